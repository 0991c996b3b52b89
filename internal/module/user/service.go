package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/jwt"
	"equipment-lending-system/internal/global/pictureBed"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/tools"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultPassword 管理员重置后的密码
const defaultPassword = "123456"

var (
	errUserNotFound  = response.ErrNotFound.WithTips("用户不存在")
	errWrongPassword = response.ErrInvalidPassword.WithTips("原密码不正确")
)

type Service struct {
	db      *gorm.DB
	storage pictureBed.Storage
}

func NewService(db *gorm.DB, storage pictureBed.Storage) *Service {
	return &Service{db: db, storage: storage}
}

type RegisterInput struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Email           string `json:"email" binding:"required,email,max=50"`
	Password        string `json:"password" binding:"required,min=6,max=40"`
	ConfirmPassword string `json:"confirm_password"`
	Name            string `json:"name" binding:"required,max=50"`
}

// CreateInput 管理员创建用户
type CreateInput struct {
	Username   string   `json:"username" binding:"required,min=3,max=20"`
	Email      string   `json:"email" binding:"required,email,max=50"`
	Password   string   `json:"password" binding:"required,min=6,max=40"`
	Name       string   `json:"name" binding:"required,max=50"`
	Phone      string   `json:"phone" binding:"omitempty,phone_cn"`
	Department string   `json:"department" binding:"max=100"`
	Roles      []string `json:"roles"`
}

// UpdateInput 管理员更新用户，空字段保持不变，Roles 为 nil 时不修改角色
type UpdateInput struct {
	Username   string   `json:"username" binding:"omitempty,min=3,max=20"`
	Email      string   `json:"email" binding:"omitempty,email,max=50"`
	Password   string   `json:"password" binding:"omitempty,min=6,max=40"`
	Name       string   `json:"name" binding:"max=50"`
	Phone      string   `json:"phone" binding:"omitempty,phone_cn"`
	Department string   `json:"department" binding:"max=100"`
	Roles      []string `json:"roles"`
}

// ProfileInput 用户修改自己的资料，填写 Password 时必须同时提供 OldPassword
type ProfileInput struct {
	Name        string `json:"name" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=50"`
	Phone       string `json:"phone" binding:"omitempty,phone_cn"`
	Department  string `json:"department" binding:"max=100"`
	Avatar      string `json:"avatar" binding:"max=255"`
	Password    string `json:"password" binding:"omitempty,min=6,max=40"`
	OldPassword string `json:"old_password"`
}

type Filter struct {
	Keyword string `form:"keyword"`
	Role    string `form:"role"`
	Status  *int   `form:"status"`
}

// LoginResult 登录成功后返回给前端
type LoginResult struct {
	Token    string   `json:"token"`
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var u model.User
	err := s.db.WithContext(ctx).Preload("Roles").Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.ErrInvalidPassword
	}
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	if !tools.PasswordCompare(password, u.Password) {
		return nil, response.ErrInvalidPassword
	}
	if u.Status == model.UserDisabled {
		return nil, response.ErrUserDisabled
	}

	token, err := jwt.CreateToken(jwt.Payload{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    u.RoleNames(),
		RoleID:   u.RoleLevel(),
	})
	if err != nil {
		return nil, response.ErrServerInternal.WithOrigin(err)
	}
	return &LoginResult{
		Token:    token,
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Roles:    u.RoleNames(),
	}, nil
}

// Register 公开注册只能获得普通用户角色
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, response.ErrInvalidRequest.WithTips("两次密码输入不一致")
	}
	return s.create(ctx, CreateInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
	})
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.User, error) {
	hashed, err := tools.PasswordEncrypt(in.Password)
	if err != nil {
		return nil, response.ErrServerInternal.WithOrigin(err)
	}
	u := &model.User{
		Username:   strings.TrimSpace(in.Username),
		Email:      strings.TrimSpace(in.Email),
		Password:   hashed,
		Name:       in.Name,
		Phone:      in.Phone,
		Department: in.Department,
		Status:     model.UserActive,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, u.Username, u.Email, 0); err != nil {
			return err
		}
		roles, err := resolveRoles(tx, in.Roles)
		if err != nil {
			return err
		}
		u.Roles = roles
		return tx.Create(u).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return u, nil
}

// checkUnique 用户名和邮箱不能与其他用户重复，空值不检查
func checkUnique(tx *gorm.DB, username, email string, excludeID uint) error {
	check := func(column, value, label string) error {
		if value == "" {
			return nil
		}
		q := tx.Model(&model.User{}).Where(column+" = ?", value)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return response.ErrAlreadyExists.WithTips(fmt.Sprintf("%s已被使用: %s", label, value))
		}
		return nil
	}
	if err := check("username", username, "用户名"); err != nil {
		return err
	}
	return check("email", email, "邮箱")
}

// resolveRoles 把角色字符串映射为角色记录，为空时默认普通用户，无法识别的记录警告后按普通用户处理
func resolveRoles(tx *gorm.DB, tokens []string) ([]model.Role, error) {
	names := map[model.RoleName]struct{}{}
	for _, token := range tokens {
		name, ok := model.ParseRole(token)
		if !ok {
			log.Warn("未知角色，按普通用户处理", "role", token)
		}
		names[name] = struct{}{}
	}
	if len(names) == 0 {
		names[model.RoleUser] = struct{}{}
	}

	list := make([]model.RoleName, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	var roles []model.Role
	if err := tx.Where("name IN ?", list).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	if len(roles) != len(list) {
		return nil, response.ErrServerInternal.WithTips("角色数据未初始化")
	}
	return roles, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Preload("Roles").First(&u, id).Error; err != nil {
		return nil, database.Wrap(err, errUserNotFound)
	}
	return &u, nil
}

func (s *Service) lock(tx *gorm.DB, id uint) (*model.User, error) {
	var u model.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, id).Error; err != nil {
		return nil, database.Wrap(err, errUserNotFound)
	}
	return &u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*model.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := s.lock(tx, id)
		if err != nil {
			return err
		}
		if in.Email != "" && in.Email != u.Email {
			if err := checkUnique(tx, "", in.Email, id); err != nil {
				return err
			}
			u.Email = in.Email
		}
		if in.Password != "" {
			if !tools.PasswordCompare(in.OldPassword, u.Password) {
				return errWrongPassword
			}
			if u.Password, err = tools.PasswordEncrypt(in.Password); err != nil {
				return err
			}
		}
		u.Name = in.Name
		u.Phone = in.Phone
		u.Department = in.Department
		if in.Avatar != "" {
			u.Avatar = in.Avatar
		}
		return tx.Omit(clause.Associations).Save(u).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return s.Get(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := s.lock(tx, id)
		if err != nil {
			return err
		}
		if !tools.PasswordCompare(oldPassword, u.Password) {
			return errWrongPassword
		}
		hashed, err := tools.PasswordEncrypt(newPassword)
		if err != nil {
			return err
		}
		return tx.Model(u).Update("password", hashed).Error
	})
	return database.Wrap(err, nil)
}

// UploadAvatar 保存到存储后把访问地址写回用户
func (s *Service) UploadAvatar(ctx context.Context, id uint, filename string, r io.Reader, contentType string) (*model.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	url, err := s.storage.Save(ctx, filename, r, contentType)
	if err != nil {
		return nil, response.ErrStorage.WithOrigin(err)
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("avatar", url)
	if res.Error != nil {
		return nil, database.Wrap(res.Error, nil)
	}
	return s.Get(ctx, id)
}

func (s *Service) PresignAvatar(ctx context.Context, filename, contentType string) (*pictureBed.PresignedUploadResponse, error) {
	result, err := s.storage.PresignUpload(ctx, pictureBed.PresignedUploadRequest{
		Filename:    filename,
		ContentType: contentType,
	})
	if errors.Is(err, pictureBed.ErrPresignUnsupported) {
		return nil, response.ErrInvalidRequest.WithTips(err.Error())
	}
	if err != nil {
		return nil, response.ErrStorage.WithOrigin(err)
	}
	return result, nil
}

func (s *Service) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.User{})
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("(username LIKE ? OR email LIKE ? OR name LIKE ? OR department LIKE ?)", like, like, like, like)
	}
	if f.Role != "" {
		role, _ := model.ParseRole(f.Role)
		q = q.Where("id IN (?)", s.db.Table("user_role").
			Select("user_role.user_id").
			Joins("JOIN role ON role.id = user_role.role_id").
			Where("role.name = ?", role))
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	return q
}

func (s *Service) List(ctx context.Context, f Filter, page tools.Page) (tools.PageResult[model.User], error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return tools.PageResult[model.User]{}, database.Wrap(err, nil)
	}
	var list []model.User
	err := s.filtered(ctx, f).Preload("Roles").
		Order("id ASC").Offset(page.Offset()).Limit(page.PageSize).Find(&list).Error
	if err != nil {
		return tools.PageResult[model.User]{}, database.Wrap(err, nil)
	}
	return tools.NewPageResult(list, total, page), nil
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*model.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := s.lock(tx, id)
		if err != nil {
			return err
		}
		if err := checkUnique(tx, in.Username, in.Email, id); err != nil {
			return err
		}
		if in.Username != "" {
			u.Username = strings.TrimSpace(in.Username)
		}
		if in.Email != "" {
			u.Email = strings.TrimSpace(in.Email)
		}
		if in.Password != "" {
			if u.Password, err = tools.PasswordEncrypt(in.Password); err != nil {
				return err
			}
		}
		if in.Name != "" {
			u.Name = in.Name
		}
		if in.Phone != "" {
			u.Phone = in.Phone
		}
		if in.Department != "" {
			u.Department = in.Department
		}
		if err := tx.Omit(clause.Associations).Save(u).Error; err != nil {
			return err
		}
		if in.Roles == nil {
			return nil
		}
		roles, err := resolveRoles(tx, in.Roles)
		if err != nil {
			return err
		}
		return tx.Model(u).Association("Roles").Replace(roles)
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return s.Get(ctx, id)
}

// SetStatus 只接受 0 正常、1 禁用
func (s *Service) SetStatus(ctx context.Context, id uint, status int) (*model.User, error) {
	if status != model.UserActive && status != model.UserDisabled {
		return nil, response.ErrInvalidRequest.WithTips(fmt.Sprintf("无效的状态值: %d，状态值必须为0(正常)或1(禁用)", status))
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, database.Wrap(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) ResetPassword(ctx context.Context, id uint) error {
	hashed, err := tools.PasswordEncrypt(defaultPassword)
	if err != nil {
		return response.ErrServerInternal.WithOrigin(err)
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", hashed)
	if res.Error != nil {
		return database.Wrap(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errUserNotFound
	}
	return nil
}

// Delete 还有未完成借用记录的用户不能删除
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := s.lock(tx, id)
		if err != nil {
			return err
		}
		var open int64
		err = tx.Model(&model.BorrowRecord{}).
			Where("borrower_id = ? AND status IN ?", id, []model.BorrowStatus{
				model.BorrowPending, model.BorrowBorrowed, model.BorrowOverdue,
			}).Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return response.ErrConflict.WithTips(fmt.Sprintf("该用户还有 %d 条未完成的借用记录，不能删除", open))
		}
		if err := tx.Model(u).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(u).Error
	})
	return database.Wrap(err, nil)
}
