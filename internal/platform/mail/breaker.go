package mail

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSender はSenderをサーキットブレーカーで包みます。
// 連続して失敗するプロバイダへの送信を一定時間止め、gobreaker.ErrOpenState を返します。
type BreakerSender struct {
	inner Sender
	cb    *gobreaker.CircuitBreaker
}

var _ Sender = (*BreakerSender)(nil)

// NewBreakerSender はBreakerSenderを生成します。
//   - 直近の送信が3件以上で失敗率が60%以上のときに開きます。
//   - 開いてから30秒後に半開状態で1件だけ試行します。
func NewBreakerSender(name string, inner Sender) *BreakerSender {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
	return &BreakerSender{inner: inner, cb: cb}
}

// Send はブレーカーが閉じていれば内側のSenderで送信します。
// 不正なメッセージはプロバイダの障害として数えません。
func (s *BreakerSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Send(ctx, msg)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// State はブレーカーの現在の状態を返します。
func (s *BreakerSender) State() gobreaker.State {
	return s.cb.State()
}
