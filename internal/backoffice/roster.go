package backoffice

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/width"
)

// ParseRoster extracts shop rows from the roster listing page. The page is a
// single table with one row per shop: code, name, kana, address, phone.
// Full-width characters in code and phone columns are folded to half-width.
func ParseRoster(r io.Reader) ([]RosterShop, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("backoffice: parse roster page: %w", err)
	}

	var shops []RosterShop
	doc.Find("table.shop-list tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return // header row
		}
		shop := RosterShop{
			Code:    width.Fold.String(text(cells.Eq(0))),
			Name:    text(cells.Eq(1)),
			Kana:    text(cells.Eq(2)),
			Address: text(cells.Eq(3)),
			Phone:   width.Fold.String(text(cells.Eq(4))),
		}
		if shop.Code == "" {
			return
		}
		shops = append(shops, shop)
	})
	return shops, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
