package dto

import (
	"net/url"
	"strconv"
)

// ProductQuery 商品列表查询参数 (GET /products)
type ProductQuery struct {
	Category string `form:"category"`
	Farm     string `form:"farm"`
	Search   string `form:"search"`
	Popular  *bool  `form:"popular"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// Encode 编码为查询串，空值不输出；结果按 key 排序，保证相同参数得到相同缓存键
func (q ProductQuery) Encode() string {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Farm != "" {
		v.Set("farm", q.Farm)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Popular != nil {
		v.Set("popular", strconv.FormatBool(*q.Popular))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v.Encode()
}
