package model

// DashboardStats 看板统计
type DashboardStats struct {
	TotalProducts    int `json:"totalProducts"`
	TotalCategories  int `json:"totalCategories"`
	TotalFarms       int `json:"totalFarms"`
	TotalSocialLinks int `json:"totalSocialLinks"`
	PopularProducts  int `json:"popularProducts"`
	TotalPages       int `json:"totalPages"`
}

// Dashboard 看板数据 (GET /admin/dashboard)
type Dashboard struct {
	Stats           DashboardStats `json:"stats"`
	RecentProducts  []Product      `json:"recentProducts"`
	PopularProducts []Product      `json:"popularProducts"`
}

// Clone 副本
func (d *Dashboard) Clone() *Dashboard {
	if d == nil {
		return nil
	}
	out := *d
	out.RecentProducts = append([]Product{}, d.RecentProducts...)
	out.PopularProducts = append([]Product{}, d.PopularProducts...)
	return &out
}

// 未配置页面时按 5 个默认页面统计
const defaultPageCount = 5

// StatsFromConfig 看板接口无数据时，根据配置计算统计
func StatsFromConfig(c *Configuration) DashboardStats {
	pages := len(c.Pages)
	if pages == 0 {
		pages = defaultPageCount
	}
	return DashboardStats{
		TotalProducts:    len(c.Products),
		TotalCategories:  len(c.Categories),
		TotalFarms:       len(c.Farms),
		TotalSocialLinks: len(c.SocialMediaLinks),
		PopularProducts:  len(c.PopularProducts()),
		TotalPages:       pages,
	}
}
