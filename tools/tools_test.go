package tools

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type row struct {
	ID    uint     `excel:"ID"`
	Name  string   `excel:"名称"`
	Price *float64 `excel:"价格"`
	Note  string   `excel:"-"`
}

func TestTableOf(t *testing.T) {
	price := 12.5
	headers, rows, err := TableOf([]row{{ID: 1, Name: "钻机", Price: &price, Note: "x"}, {ID: 2, Name: "梯子"}})
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "名称", "价格"}, headers)
	require.Equal(t, []any{uint(1), "钻机", 12.5}, rows[0])
	require.Equal(t, []any{uint(2), "梯子", ""}, rows[1])

	_, _, err = TableOf(row{})
	require.Error(t, err)
	_, _, err = TableOf([]int{1})
	require.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportToCSV(&buf, []row{{ID: 1, Name: "钻机, 大号"}}))
	require.True(t, strings.HasPrefix(buf.String(), "\ufeff"))

	records, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"ID", "名称", "价格"}, {"1", "钻机, 大号", ""}}, records)
}

func TestReadCSVDecodesGB18030(t *testing.T) {
	data := []byte("\xc3\xfb\xb3\xc6,\xca\xfd\xc1\xbf\n\xd7\xea\xbb\xfa,5\n")
	records, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, [][]string{{"名称", "数量"}, {"钻机", "5"}}, records)
}

func TestExcelRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, ExportToExcel(f, "Sheet1", []row{{ID: 3, Name: "帐篷"}}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadExcel(&buf)
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "名称", "价格"}, rows[0])
	require.Equal(t, "3", rows[1][0])
	require.Equal(t, "帐篷", rows[1][1])
}

func TestPassword(t *testing.T) {
	hashed, err := PasswordEncrypt("secret123")
	require.NoError(t, err)
	require.True(t, PasswordCompare("secret123", hashed))
	require.False(t, PasswordCompare("wrong", hashed))
}

func TestGetPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&page_size=500", nil)
	p := GetPage(c)
	require.Equal(t, Page{Page: 3, PageSize: 100}, p)
	require.Equal(t, 200, p.Offset())

	// gin 会缓存查询参数，换一个请求需要新的 context
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=x", nil)
	require.Equal(t, Page{Page: 1, PageSize: 20}, GetPage(c, 20))

	res := NewPageResult[int](nil, 21, Page{Page: 1, PageSize: 10})
	require.Equal(t, int64(3), res.TotalPages)
	require.NotNil(t, res.List)
}
