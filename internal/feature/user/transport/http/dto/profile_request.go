// Package dto はuserフィーチャーのリクエストボディを定義します。
package dto

import "profile_backend/internal/feature/user/domain/entity"

// UpdateProfileReq は PATCH /api/user のボディです。
// ここに無いキー（role, email, profilePicLarge など）は拒否されます。
type UpdateProfileReq struct {
	Name            *string `json:"name"`
	MobileNumber    *string `json:"mobileNumber"`
	ProfilePicSmall *string `json:"profilePicSmall"`
}

// ToUpdate はリクエストをドメインの部分更新に変換します。
func (r UpdateProfileReq) ToUpdate() entity.ProfileUpdate {
	return entity.ProfileUpdate{
		Name:            r.Name,
		MobileNumber:    r.MobileNumber,
		ProfilePicSmall: r.ProfilePicSmall,
	}
}
