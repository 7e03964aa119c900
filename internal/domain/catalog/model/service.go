package model

// Service 推广服务条目（点赞/播放/粉丝等），key 为集合内唯一标识。
// MaxPurchase 为 0 表示不限购。
type Service struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	MinPurchase int     `json:"minPurchase"`
	MaxPurchase int     `json:"maxPurchase"`
}
