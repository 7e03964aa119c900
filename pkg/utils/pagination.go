package utils

// 流水账单按整集合载入后在内存里切页，默认每页 10 条，
// 单页上限 100 条，防止一次取走整个账单。
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Pagination 分页请求参数
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageResult 分页响应结果
type PageResult struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Normalize 把页码和每页条数收敛到合法区间
func (p *Pagination) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// Bounds 计算当前页在 total 条记录上的切片区间 [start, end)，
// 页码越界时返回空区间
func (p *Pagination) Bounds(total int) (int, int) {
	p.Normalize()
	start := (p.Page - 1) * p.Limit
	if start >= total {
		return 0, 0
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}
