package backoffice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterPage = `
<html><body>
<table class="shop-list">
  <tr><th>店番</th><th>店名</th><th>カナ</th><th>住所</th><th>電話</th></tr>
  <tr>
    <td>Ｓ００１</td>
    <td>中央薬局</td>
    <td>チュウオウヤッキョク</td>
    <td>東京都千代田区1-2-3</td>
    <td>０３－１２３４－５６７８</td>
  </tr>
  <tr>
    <td>S002</td>
    <td>港店</td>
    <td>ミナトテン</td>
    <td>東京都港区4-5-6</td>
    <td>03-9876-5432</td>
  </tr>
  <tr><td></td><td></td><td></td><td></td><td></td></tr>
</table>
</body></html>`

func TestParseRoster(t *testing.T) {
	shops, err := ParseRoster(strings.NewReader(rosterPage))
	require.NoError(t, err)
	require.Len(t, shops, 2)

	assert.Equal(t, "S001", shops[0].Code, "full-width code must fold to half-width")
	assert.Equal(t, "中央薬局", shops[0].Name)
	assert.Equal(t, "チュウオウヤッキョク", shops[0].Kana)
	assert.Equal(t, "03-1234-5678", shops[0].Phone)

	assert.Equal(t, "S002", shops[1].Code)
	assert.Equal(t, "03-9876-5432", shops[1].Phone)
}

func TestParseRosterEmptyTable(t *testing.T) {
	shops, err := ParseRoster(strings.NewReader(`<html><body><table class="shop-list"></table></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, shops)
}
