package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Config
const (
	BaseURL      = "http://localhost:8080"
	TotalReaders = 2000 // 并发读集合的模拟客户端数
	TotalWriters = 50   // 并发整体覆盖写的模拟客户端数
)

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

func main() {
	// 1. 先写入一份基准集合
	if err := saveServices(); err != nil {
		fmt.Println("初始化服务目录失败:", err)
		return
	}

	fmt.Printf("开始压测：%d 个读者 + %d 个写者并发访问 /api/data/services ...\n",
		TotalReaders, TotalWriters)
	time.Sleep(1 * time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0
	failCount := 0

	start := time.Now()

	for i := 0; i < TotalReaders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok := readServices()
			mu.Lock()
			if ok {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}()
	}

	for i := 0; i < TotalWriters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok := saveServices() == nil
			mu.Lock()
			if ok {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	cost := time.Since(start)

	total := TotalReaders + TotalWriters
	fmt.Println("-----------------------------------")
	fmt.Printf("压测完成，耗时: %v\n", cost)
	fmt.Printf("成功: %d / %d，失败: %d\n", successCount, total, failCount)
	fmt.Printf("QPS: %.0f\n", float64(total)/cost.Seconds())
}

func readServices() bool {
	resp, err := httpClient.Get(BaseURL + "/api/data/services")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func saveServices() error {
	payload := map[string]interface{}{
		"data": []map[string]interface{}{
			{"key": "douyin_likes", "name": "点赞", "price": 0.5, "minPurchase": 100, "maxPurchase": 0},
			{"key": "douyin_views", "name": "播放量", "price": 0.01, "minPurchase": 1000, "maxPurchase": 0},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := httpClient.Post(BaseURL+"/api/data/services", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
