package dto

// UploadAvatarReq は POST /api/profile/upload のボディです。
// ImageBase64 は "data:image/png;base64,..." 形式か、プレフィックス無しのbase64です。
type UploadAvatarReq struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
}
