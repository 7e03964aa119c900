package main

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"video_promo_shop/internal/pkg/config"
	"video_promo_shop/pkg/database"
	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/store/docstore"
	"video_promo_shop/pkg/store/filestore"
	"video_promo_shop/pkg/store/objectstore"
)

// 给服务端集合存储种入默认管理员和管理员邀请码。
// 已有用户数据时什么都不做，重复执行安全。
func main() {
	config.LoadConfig()

	var st store.Store
	switch config.GlobalConfig.Storage.Backend {
	case "postgres":
		st = docstore.New(database.InitDatabase())
	default:
		dirStore, err := filestore.NewDirStore(config.GlobalConfig.Storage.DataDir)
		if err != nil {
			log.Fatalf("init data directory failed: %v", err)
		}
		st = dirStore
	}

	if _, err := st.Read(store.KeyUsers); err == nil {
		log.Println("users collection already present, nothing to seed")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("read users collection failed: %v", err)
	}

	now := time.Now()
	users := []map[string]interface{}{{
		"id":        objectstore.SeedAdminID,
		"name":      objectstore.SeedAdminName,
		"email":     objectstore.SeedAdminEmail,
		"password":  objectstore.SeedAdminPassword,
		"balance":   0.0,
		"isAdmin":   true,
		"createdAt": now,
	}}
	inviteCodes := []map[string]interface{}{{
		"code":       objectstore.SeedAdminInviteCode,
		"isAdmin":    true,
		"usageLimit": 999,
		"usedCount":  0,
		"createdAt":  now,
	}}

	if err := write(st, store.KeyUsers, users); err != nil {
		log.Fatalf("seed users failed: %v", err)
	}
	if err := write(st, store.KeyInviteCodes, inviteCodes); err != nil {
		log.Fatalf("seed invite codes failed: %v", err)
	}

	log.Printf("seeded admin user %q and invite code %q",
		objectstore.SeedAdminName, objectstore.SeedAdminInviteCode)
}

func write(st store.Store, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return st.Write(key, raw)
}
