package model

import (
	"time"

	"gorm.io/gorm"
)

/*

User is a data model for a registered account

Id: primary key, matches the subject claim issued by the auth provider
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted
Name: display name
AvatarUrl: profile image location

*/
type User struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
	Name      string
	AvatarUrl string
}
