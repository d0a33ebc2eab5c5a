// Package format renders geocoding results as human-readable text. All
// result fields are optional upstream, so every line is emitted only when
// its source field is present.
package format

import (
	"fmt"
	"strings"

	"zenrin-geocode/internal/geocode"

	"github.com/tidwall/gjson"
)

const lineWidth = 60

// Result renders one geocoding outcome. Error values become a diagnostic
// block; successful results are framed by separator rules, with multiple
// sub-results (under a "results" key) divided by a lighter rule.
func Result(r geocode.Result) string {
	if r.Err != nil {
		return formatError(r.Err)
	}

	doc := gjson.ParseBytes(r.Raw)

	var out []string
	out = append(out, strings.Repeat("=", lineWidth))
	if results := doc.Get("results"); results.Exists() && results.IsArray() {
		for idx, item := range results.Array() {
			if idx > 0 {
				out = append(out, strings.Repeat("-", lineWidth))
			}
			out = append(out, SingleItem(item))
		}
	} else {
		out = append(out, SingleItem(doc))
	}
	out = append(out, strings.Repeat("=", lineWidth))
	return strings.Join(out, "\n")
}

func formatError(e *geocode.APIError) string {
	var out []string
	out = append(out, fmt.Sprintf("エラー: %s", e.Message))
	if e.StatusCode != 0 {
		out = append(out, fmt.Sprintf("ステータスコード: %d", e.StatusCode))
	}
	if e.ResponseText != "" {
		out = append(out, fmt.Sprintf("レスポンス: %s", e.ResponseText))
	}
	return strings.Join(out, "\n")
}

// SingleItem renders one result item, one labeled line per present field.
func SingleItem(item gjson.Result) string {
	var out []string

	if v := item.Get("address"); v.Exists() {
		out = append(out, fmt.Sprintf("住所: %s", v.String()))
	}

	if pos := item.Get("match_position"); pos.Exists() && pos.IsArray() {
		coords := pos.Array()
		if len(coords) >= 2 {
			out = append(out, fmt.Sprintf("経度: %s", coords[0].String()))
			out = append(out, fmt.Sprintf("緯度: %s", coords[1].String()))
		}
	}

	if v := item.Get("match_level"); v.Exists() {
		out = append(out, fmt.Sprintf("マッチレベル: %s", v.String()))
	}
	if v := item.Get("post_code"); v.Exists() {
		out = append(out, fmt.Sprintf("郵便番号: %s", v.String()))
	}
	if v := item.Get("address2"); v.Exists() {
		out = append(out, fmt.Sprintf("都道府県: %s", v.String()))
	}
	if v := item.Get("address3"); v.Exists() {
		out = append(out, fmt.Sprintf("市区町村: %s", v.String()))
	}
	if v := item.Get("address4"); v.Exists() {
		out = append(out, fmt.Sprintf("町域: %s", v.String()))
	}

	if zid := item.Get("building_info.zid"); zid.Exists() {
		out = append(out, fmt.Sprintf("ZID: %s", zid.String()))
	}

	return strings.Join(out, "\n")
}
