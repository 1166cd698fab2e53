package model

// Sex is the closed set of values accepted for the users.sex column.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate Date   `json:"birth_date"`
	Sex       Sex    `json:"sex"`
}
