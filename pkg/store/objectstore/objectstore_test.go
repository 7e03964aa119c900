package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/store/filestore"
)

func openMem(t *testing.T) *DB {
	db, err := Open(Options{})
	require.NoError(t, err)
	return db
}

func TestFirstOpenSeedsAdmin(t *testing.T) {
	db := openMem(t)

	admin, err := db.GetByID(store.KeyUsers, SeedAdminID)
	require.NoError(t, err)
	assert.Equal(t, SeedAdminName, admin["name"])
	assert.Equal(t, true, admin["isAdmin"])

	invite, err := db.GetByID(store.KeyInviteCodes, SeedAdminInviteCode)
	require.NoError(t, err)
	assert.Equal(t, true, invite["isAdmin"])
}

func TestReopenSkipsSeeding(t *testing.T) {
	snap := filestore.NewMemStore()

	db, err := Open(Options{Snapshot: snap})
	require.NoError(t, err)

	// 改掉种子管理员的余额后重新打开，种子步骤不应把它覆盖回去
	admin, err := db.GetByID(store.KeyUsers, SeedAdminID)
	require.NoError(t, err)
	admin["balance"] = 88.0
	require.NoError(t, db.Put(store.KeyUsers, admin))

	db2, err := Open(Options{Snapshot: snap})
	require.NoError(t, err)

	admin2, err := db2.GetByID(store.KeyUsers, SeedAdminID)
	require.NoError(t, err)
	assert.Equal(t, 88.0, admin2["balance"])

	n, err := db2.Count(store.KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUniqueConstraint(t *testing.T) {
	db := openMem(t)

	err := db.Add(store.KeyUsers, map[string]interface{}{
		"id": "u2", "name": "bob", "email": SeedAdminEmail,
	})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	// 更新自身不触发唯一约束
	admin, err := db.GetByID(store.KeyUsers, SeedAdminID)
	require.NoError(t, err)
	admin["balance"] = 1.0
	assert.NoError(t, db.Put(store.KeyUsers, admin))
}

func TestSecondaryIndexLookup(t *testing.T) {
	db := openMem(t)

	require.NoError(t, db.Add(store.KeyOrders, map[string]interface{}{
		"orderId": "o1", "userId": "u1", "status": "waiting",
	}))
	require.NoError(t, db.Add(store.KeyOrders, map[string]interface{}{
		"orderId": "o2", "userId": "u2", "status": "waiting",
	}))
	require.NoError(t, db.Add(store.KeyOrders, map[string]interface{}{
		"orderId": "o3", "userId": "u1", "status": "completed",
	}))

	got, err := db.GetByIndex(store.KeyOrders, "userId", "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = db.GetByIndex(store.KeyOrders, "status", "waiting")
	assert.Error(t, err)
}

func TestImportExportRoundTrip(t *testing.T) {
	db := openMem(t)

	raw := []byte(`[{"key":"douyin_likes","name":"点赞","price":0.5,"minPurchase":100,"maxPurchase":0}]`)
	require.NoError(t, db.ImportCollection(store.KeyServices, raw))

	out, err := db.ExportCollection(store.KeyServices)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestImportReplacesWholeStore(t *testing.T) {
	db := openMem(t)

	require.NoError(t, db.Add(store.KeyServices, map[string]interface{}{"key": "old"}))
	require.NoError(t, db.ImportCollection(store.KeyServices, []byte(`[{"key":"new"}]`)))

	_, err := db.GetByID(store.KeyServices, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetByID(store.KeyServices, "new")
	assert.NoError(t, err)
}

func TestDeleteAndClear(t *testing.T) {
	db := openMem(t)

	require.NoError(t, db.Add(store.KeyCardKeys, map[string]interface{}{
		"id": "ck1", "code": "CARD-0001", "amount": 50.0, "isUsed": false,
	}))

	require.NoError(t, db.Delete(store.KeyCardKeys, "ck1"))
	// 重复删除也成功
	require.NoError(t, db.Delete(store.KeyCardKeys, "ck1"))

	require.NoError(t, db.Add(store.KeyCardKeys, map[string]interface{}{
		"id": "ck2", "code": "CARD-0002", "amount": 10.0, "isUsed": false,
	}))
	require.NoError(t, db.Clear(store.KeyCardKeys))

	n, err := db.Count(store.KeyCardKeys)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUnknownStore(t *testing.T) {
	db := openMem(t)

	_, err := db.GetAll("bogus")
	assert.ErrorIs(t, err, ErrUnknownStore)
}
