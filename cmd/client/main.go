package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"video_promo_shop/internal/gateway"
	"video_promo_shop/internal/pkg/config"
	"video_promo_shop/pkg/logger"
)

// 同步层命令行客户端：按 sync 配置装配网关，远端不可达时
// 自动降级到快照目录里的本地数据。
//
//	client status            探活一次并打印连通状态
//	client keys              列出集合名
//	client get <key>         读取集合
//	client save <key> <json> 写入集合
//	client del <key>         删除集合
//	client login <用户> <密码>
//	client me                当前登录用户
//	client logout
func main() {
	if len(os.Args) < 2 {
		usage()
	}

	config.LoadConfig()
	logger.Init("release")
	defer logger.Sync()

	client, err := gateway.NewClient(config.GlobalConfig.Sync, logger.L(), nil)
	if err != nil {
		log.Fatalf("init sync client failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(config.GlobalConfig.Sync.RequestTimeoutSeconds+1)*time.Second)
	defer cancel()

	// 先探活一次，让后续操作直接走正确的在线/离线路径
	client.Monitor.CheckNow(ctx)

	switch os.Args[1] {
	case "status":
		if client.Conn.Online() {
			fmt.Println("online:", config.GlobalConfig.Sync.BaseURL)
		} else {
			fmt.Println("offline, serving from", config.GlobalConfig.Sync.SnapshotDir)
		}

	case "keys":
		keys, freshness, err := client.Gateway.Keys(ctx)
		fatalIf(err)
		for _, k := range keys {
			fmt.Println(k)
		}
		warnStale(freshness)

	case "get":
		requireArgs(3)
		raw, freshness, err := client.Gateway.GetData(ctx, os.Args[2])
		fatalIf(err)
		if raw == nil {
			fmt.Println("null")
		} else {
			fmt.Println(string(raw))
		}
		warnStale(freshness)

	case "save":
		requireArgs(4)
		fatalIf(client.Gateway.SaveData(ctx, os.Args[2], rawJSON(os.Args[3])))
		fmt.Println("saved", os.Args[2])

	case "del":
		requireArgs(3)
		fatalIf(client.Gateway.DeleteData(ctx, os.Args[2]))
		fmt.Println("deleted", os.Args[2])

	case "login":
		requireArgs(4)
		user, token, err := client.Gateway.Login(ctx, os.Args[2], os.Args[3])
		fatalIf(err)
		fmt.Printf("logged in as %v, token %s\n", user["name"], token)

	case "me":
		user, freshness, err := client.Gateway.CurrentUser(ctx)
		fatalIf(err)
		fmt.Printf("%v <%v>\n", user["name"], user["email"])
		warnStale(freshness)

	case "logout":
		fatalIf(client.Gateway.Logout(ctx))
		fmt.Println("logged out")

	default:
		usage()
	}
}

// rawJSON 原样透传命令行里的 JSON 文本
type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) {
	return []byte(r), nil
}

func warnStale(f gateway.Freshness) {
	if f == gateway.StaleLocal {
		fmt.Fprintln(os.Stderr, "(本地数据，可能过期)")
	}
}

func requireArgs(n int) {
	if len(os.Args) < n {
		usage()
	}
}

func fatalIf(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: client status|keys|get|save|del|login|me|logout [args]")
	os.Exit(2)
}
