package dto

// SignupReq は/api/auth/signupエンドポイントのリクエストボディを表します。
// nameは任意で、省略時はメールアドレスのローカル部が使われます。
type SignupReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"max=100"`
}
