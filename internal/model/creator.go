// internal/model/creator.go
package model

type Creator struct {
	ID        int    `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Platform  string `db:"platform" json:"platform"`
	Handle    string `db:"handle" json:"handle"`
	Followers int    `db:"followers" json:"followers"`
	Niche     string `db:"niche" json:"niche"`
}
