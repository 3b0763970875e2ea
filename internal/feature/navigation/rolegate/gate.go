// Package rolegate はページ遷移用のロールゲート（状態機械）を実装します。
// セキュリティ境界ではなく、表示とリダイレクトの判断にのみ使います。
// 権限の判定はサーバー側の RequireRole と usecase が行います。
package rolegate

import (
	"slices"
	"strings"
	"sync"

	"profile_backend/internal/feature/user/domain/entity"
)

// LoginPath はセッションが無い場合の遷移先です。
const LoginPath = "/login"

// State はゲートの状態です。
type State int

const (
	// Loading はセッションかロールの解決待ちです。保護された内容は表示しません。
	Loading State = iota
	// Allowed はロールが許可されており、内容を表示します。
	Allowed
	// Blocked はロールのホーム配下にいるが許可されていない状態です。何も表示せず遷移もしません。
	Blocked
	// RedirectingToHome はロールのホーム画面へ遷移します。
	RedirectingToHome
	// RedirectingToLogin はログイン画面へ遷移します。
	RedirectingToLogin
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Allowed:
		return "allowed"
	case Blocked:
		return "blocked"
	case RedirectingToHome:
		return "redirecting_to_home"
	case RedirectingToLogin:
		return "redirecting_to_login"
	default:
		return "unknown"
	}
}

// Input はゲートの判断材料です。
type Input struct {
	SessionPending bool
	HasSession     bool
	RolePending    bool
	// Role は解決済みのロール名です。空文字はロール無しを表します。
	Role    string
	Path    string
	Allowed []entity.Role
}

// Decision はゲートの判断結果です。Location はリダイレクト状態のときのみ設定されます。
type Decision struct {
	State    State
	Location string
}

// RendersChildren は保護された内容を表示してよいかを返します。
func (d Decision) RendersChildren() bool {
	return d.State == Allowed
}

// underPrefix reports whether path is prefix itself or below it.
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Evaluate は入力から状態を決定します。
//   - セッションかロールが解決待ち: Loading
//   - セッションもロールも無い: RedirectingToLogin
//   - ロールが許可されている: Allowed
//   - 既知のロールでホーム配下の外: RedirectingToHome（ホーム配下なら Blocked）
//   - 未知のロール: RedirectingToLogin
func Evaluate(in Input) Decision {
	if in.SessionPending || (in.HasSession && in.RolePending) {
		return Decision{State: Loading}
	}
	if !in.HasSession || strings.TrimSpace(in.Role) == "" {
		return Decision{State: RedirectingToLogin, Location: LoginPath}
	}

	role, known := entity.ParseRole(in.Role)
	if !known {
		return Decision{State: RedirectingToLogin, Location: LoginPath}
	}
	if slices.Contains(in.Allowed, role) {
		return Decision{State: Allowed}
	}

	home := role.HomePath()
	if underPrefix(in.Path, home) {
		return Decision{State: Blocked}
	}
	return Decision{State: RedirectingToHome, Location: home}
}

// Gate はセッションとロールの解決イベントを受けて状態を遷移させます。
// 各メソッドは遷移後の判断を返します。
type Gate struct {
	mu sync.Mutex
	in Input
}

// New はLoading状態のGateを生成します。
func New(path string, allowed ...entity.Role) *Gate {
	return &Gate{in: Input{
		SessionPending: true,
		RolePending:    true,
		Path:           path,
		Allowed:        slices.Clone(allowed),
	}}
}

// SessionSettled はセッションの解決結果を反映します。セッションが無い場合、ロールの取得は行いません。
func (g *Gate) SessionSettled(hasSession bool) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.in.SessionPending = false
	g.in.HasSession = hasSession
	if !hasSession {
		g.in.RolePending = false
		g.in.Role = ""
	}
	return Evaluate(g.in)
}

// RoleSettled はロール取得の結果を反映します。取得に失敗した場合はロール無しとして扱います。
func (g *Gate) RoleSettled(role string, err error) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.in.RolePending = false
	g.in.Role = role
	if err != nil {
		g.in.Role = ""
	}
	return Evaluate(g.in)
}

// Navigate は現在のパスと許可ロールを更新します。
func (g *Gate) Navigate(path string, allowed ...entity.Role) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.in.Path = path
	g.in.Allowed = slices.Clone(allowed)
	return Evaluate(g.in)
}

// Decision は現在の判断を返します。
func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Evaluate(g.in)
}
