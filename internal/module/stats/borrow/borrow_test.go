package borrow

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"equipment-lending-system/internal/model"
	"equipment-lending-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

type fixture struct {
	db    *gorm.DB
	alice *model.User
	bob   *model.User
	drill *model.Equipment
	tent  *model.Equipment
}

func seed(t *testing.T, now time.Time) fixture {
	db := test.NewDB(t)
	category := test.CreateCategory(t, db, "电动工具")
	f := fixture{
		db:    db,
		alice: test.CreateUser(t, db, "alice"),
		bob:   test.CreateUser(t, db, "bob"),
		drill: test.CreateEquipment(t, db, category.ID, "电钻", "SN-D", 5),
		tent:  test.CreateEquipment(t, db, category.ID, "帐篷", "SN-T", 5),
	}
	yesterday := now.AddDate(0, 0, -1)
	returned := now
	records := []model.BorrowRecord{
		{EquipmentID: f.drill.ID, BorrowerID: f.alice.ID, Quantity: 1, Status: model.BorrowPending, BorrowDate: now, ExpectedReturnDate: now.AddDate(0, 0, 7)},
		{EquipmentID: f.drill.ID, BorrowerID: f.alice.ID, Quantity: 1, Status: model.BorrowBorrowed, BorrowDate: yesterday, ExpectedReturnDate: now.AddDate(0, 0, 3)},
		// 借出中但已过期
		{EquipmentID: f.drill.ID, BorrowerID: f.bob.ID, Quantity: 1, Status: model.BorrowBorrowed, BorrowDate: now.AddDate(0, 0, -10), ExpectedReturnDate: yesterday},
		{EquipmentID: f.tent.ID, BorrowerID: f.alice.ID, Quantity: 1, Status: model.BorrowReturned, BorrowDate: yesterday, ExpectedReturnDate: now, ActualReturnDate: &returned},
		{EquipmentID: f.tent.ID, BorrowerID: f.bob.ID, Quantity: 1, Status: model.BorrowRejected, BorrowDate: now, ExpectedReturnDate: now.AddDate(0, 0, 1)},
	}
	require.NoError(t, db.Create(&records).Error)
	return f
}

func TestSelectSummary(t *testing.T) {
	now := time.Now()
	f := seed(t, now)

	s, err := selectSummary(f.db, now)
	require.NoError(t, err)
	require.Equal(t, &Overview{
		TotalBorrows:  5,
		PendingCount:  1,
		BorrowedCount: 2,
		ReturnedCount: 1,
		RejectedCount: 1,
		OverdueCount:  1,
		TodayBorrows:  2,
		TodayReturns:  1,
	}, s)
}

func TestSelectTrends(t *testing.T) {
	now := time.Now()
	f := seed(t, now)

	points, err := selectTrends(f.db, now, 7)
	require.NoError(t, err)
	require.Len(t, points, 7)

	today, yesterday := points[6], points[5]
	require.Equal(t, now.Format("01-02"), today.Date)
	require.Equal(t, int64(2), today.BorrowCount)
	require.Equal(t, int64(1), today.ReturnCount)
	require.Equal(t, int64(2), yesterday.BorrowCount)
	require.Equal(t, int64(0), points[0].BorrowCount, "10 天前的记录不在一周范围内")

	points, err = selectTrends(f.db, now, 30)
	require.NoError(t, err)
	require.Len(t, points, 30)
	var total int64
	for _, p := range points {
		total += p.BorrowCount
	}
	require.Equal(t, int64(5), total)
}

func TestRankings(t *testing.T) {
	f := seed(t, time.Now())

	equipment, err := selectEquipmentRanking(f.db, 10)
	require.NoError(t, err)
	require.Len(t, equipment, 2)
	require.Equal(t, RankItem{Rank: 1, ID: f.drill.ID, Name: "电钻", BorrowCount: 3}, equipment[0])
	require.Equal(t, 2, equipment[1].Rank)

	users, err := selectUserRanking(f.db, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "alice", users[0].Name)
	require.Equal(t, int64(3), users[0].BorrowCount)
}

func TestHandlers(t *testing.T) {
	f := seed(t, time.Now())
	DB = func() *gorm.DB { return f.db }

	resp := test.DoRequest(t, Summary, test.Request{Method: http.MethodGet, Claims: test.Admin(1)})
	test.NoError(t, resp)
	require.Equal(t, int64(5), test.DecodeData[Overview](t, resp).TotalBorrows)

	resp = test.DoRequest(t, Trends, test.Request{Method: http.MethodGet, Path: "/trends?period=month", Claims: test.Admin(1)})
	test.NoError(t, resp)
	require.Len(t, test.DecodeData[[]TrendPoint](t, resp), 30)

	resp = test.DoRequest(t, UserRanking, test.Request{Method: http.MethodGet, Path: "/user-ranking?limit=1", Claims: test.Admin(1)})
	test.NoError(t, resp)
	require.Len(t, test.DecodeData[[]RankItem](t, resp), 1)
}

func TestRankingExport(t *testing.T) {
	f := seed(t, time.Now())
	DB = func() *gorm.DB { return f.db }

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/export", nil)
	RankingExport(c)
	require.Equal(t, http.StatusOK, w.Code)

	file, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer file.Close()
	require.Equal(t, []string{"装备排行", "用户排行"}, file.GetSheetList())

	rows, err := file.GetRows("装备排行")
	require.NoError(t, err)
	require.Equal(t, []string{"排名", "ID", "名称", "借用次数"}, rows[0])
	require.Equal(t, "电钻", rows[1][2])
}
