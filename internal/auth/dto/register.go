package dto

type RegisterInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Address        string `json:"address"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}
