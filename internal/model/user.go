package model

const (
	UserActive   = 0
	UserDisabled = 1
)

type User struct {
	Model
	Username   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email      string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password   string `gorm:"type:varchar(255);not null" json:"-"`
	Name       string `gorm:"type:varchar(50)" json:"name"`
	Phone      string `gorm:"type:varchar(20)" json:"phone"`
	Department string `gorm:"type:varchar(100)" json:"department"`
	Avatar     string `gorm:"type:varchar(255)" json:"avatar"`
	Status     int    `gorm:"not null;default:0" json:"status"`
	Roles      []Role `gorm:"many2many:user_role" json:"roles"`
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r.Name))
	}
	return names
}

// RoleLevel 用户拥有的最高权限等级
func (u *User) RoleLevel() int {
	level := 0
	for _, r := range u.Roles {
		if l := r.Name.Level(); l > level {
			level = l
		}
	}
	return level
}

func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// DisplayName 没有填写姓名时用用户名
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
