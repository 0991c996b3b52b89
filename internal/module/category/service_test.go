package category

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func TestCreateAndUpdate(t *testing.T) {
	s := NewService(test.NewDB(t))
	ctx := context.Background()

	power, err := s.Create(ctx, Input{Name: " 电动工具 ", Description: "钻和锯"})
	require.NoError(t, err)
	require.Equal(t, "电动工具", power.Name)

	_, err = s.Create(ctx, Input{Name: "电动工具"})
	require.ErrorIs(t, err, response.ErrAlreadyExists)

	_, err = s.Create(ctx, Input{Name: "  "})
	require.ErrorIs(t, err, response.ErrInvalidRequest)

	camping, err := s.Create(ctx, Input{Name: "露营"})
	require.NoError(t, err)

	_, err = s.Update(ctx, camping.ID, Input{Name: "电动工具"})
	require.ErrorIs(t, err, response.ErrAlreadyExists)

	// 保持原名只改描述
	updated, err := s.Update(ctx, power.ID, Input{Name: "电动工具", Description: "新描述"})
	require.NoError(t, err)
	require.Equal(t, "新描述", updated.Description)

	_, err = s.Update(ctx, 999, Input{Name: "x"})
	require.ErrorIs(t, err, response.ErrNotFound)
}

func TestDeleteRefusesReferencedCategory(t *testing.T) {
	db := test.NewDB(t)
	s := NewService(db)
	ctx := context.Background()
	used := test.CreateCategory(t, db, "电动工具")
	empty := test.CreateCategory(t, db, "露营")
	test.CreateEquipment(t, db, used.ID, "Drill", "SN-1", 1)

	err := s.Delete(ctx, used.ID)
	require.ErrorIs(t, err, response.ErrConflict)

	require.NoError(t, s.Delete(ctx, empty.ID))
	_, err = s.Get(ctx, empty.ID)
	require.ErrorIs(t, err, response.ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, empty.ID), response.ErrNotFound)

	// 软删除后名称可以再次使用
	_, err = s.Create(ctx, Input{Name: "露营"})
	require.NoError(t, err)
}

func TestListCountsEquipment(t *testing.T) {
	db := test.NewDB(t)
	s := NewService(db)
	power := test.CreateCategory(t, db, "电动工具")
	test.CreateCategory(t, db, "露营")
	test.CreateEquipment(t, db, power.ID, "Drill", "SN-1", 1)
	test.CreateEquipment(t, db, power.ID, "Saw", "SN-2", 1)

	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(2), items[0].EquipmentCount)
	require.Equal(t, int64(0), items[1].EquipmentCount)
}

func TestHandlers(t *testing.T) {
	svc = NewService(test.NewDB(t))

	resp := test.DoRequest(t, CreateCategory, test.Request{Body: gin.H{"name": "露营"}, Claims: test.Admin(1)})
	test.NoError(t, resp)
	created := test.DecodeData[struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}](t, resp)
	require.Equal(t, "露营", created.Name)

	resp = test.DoRequest(t, CreateCategory, test.Request{Body: gin.H{"name": "露营"}, Claims: test.Admin(1)})
	test.ErrorEqual(t, response.ErrAlreadyExists, resp)

	resp = test.DoRequest(t, CreateCategory, test.Request{Body: gin.H{"description": "缺少名称"}, Claims: test.Admin(1)})
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)

	resp = test.DoRequest(t, GetCategory, test.Request{
		Method: http.MethodGet,
		Params: gin.Params{{Key: "id", Value: "abc"}},
	})
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)

	resp = test.DoRequest(t, ListCategories, test.Request{Method: http.MethodGet, Claims: test.User(2)})
	test.NoError(t, resp)
	require.Len(t, test.DecodeData[[]Item](t, resp), 1)
}
