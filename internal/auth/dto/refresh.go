package dto

type RefreshOutput struct {
	AccessToken string `json:"accessToken"`
}
