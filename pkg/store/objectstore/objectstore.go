// Package objectstore 实现按实体类型分库的本地结构化存储，
// 对应浏览器端的 IndexedDB：主键 CRUD、唯一约束、userId 二级索引、
// 首次打开时的种子数据。可选地通过 filestore 快照持久化。
package objectstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"video_promo_shop/pkg/store"
)

var (
	// ErrUnknownStore 访问了 Schema 里没有的对象库
	ErrUnknownStore = errors.New("objectstore: unknown store")
	// ErrMissingKey 记录缺少主键字段
	ErrMissingKey = errors.New("objectstore: record missing key field")
	// ErrUniqueViolation 唯一约束冲突
	ErrUniqueViolation = errors.New("objectstore: unique constraint violation")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("objectstore: record not found")
)

const metaKey = "_objectstore_meta"

type meta struct {
	SchemaVersion int       `json:"schemaVersion"`
	SeededAt      time.Time `json:"seededAt"`
}

type objStore struct {
	def     StoreDef
	records map[string]map[string]interface{}
}

// DB 本地对象库
type DB struct {
	stores   map[string]*objStore
	mu       sync.RWMutex
	snapshot store.Store // 可为 nil，表示不持久化
	log      *zap.Logger
}

// Options 打开对象库的选项
type Options struct {
	// Snapshot 为非 nil 时，每个对象库在变更后整体落盘，
	// 下次 Open 时恢复（包括结构版本，避免重复种子）
	Snapshot store.Store
	Logger   *zap.Logger
}

// Open 打开对象库。首次打开（结构版本为 0）会写入默认管理员用户
// 和默认管理员邀请码，之后的打开跳过种子步骤。
func Open(opts Options) (*DB, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	db := &DB{
		stores:   make(map[string]*objStore),
		snapshot: opts.Snapshot,
		log:      log,
	}
	for _, def := range Schema() {
		db.stores[def.Name] = &objStore{
			def:     def,
			records: make(map[string]map[string]interface{}),
		}
	}

	var m meta
	if db.snapshot != nil {
		db.restore(&m)
	}

	if m.SchemaVersion < CurrentSchemaVersion {
		db.seed()
		m = meta{SchemaVersion: CurrentSchemaVersion, SeededAt: time.Now()}
		db.persistMeta(m)
	}

	return db, nil
}

// seed 写入初始管理员数据
func (db *DB) seed() {
	now := time.Now().Format(time.RFC3339)

	admin := map[string]interface{}{
		"id":        SeedAdminID,
		"name":      SeedAdminName,
		"email":     SeedAdminEmail,
		"password":  SeedAdminPassword,
		"phone":     "",
		"balance":   0.0,
		"isAdmin":   true,
		"createdAt": now,
	}
	invite := map[string]interface{}{
		"code":       SeedAdminInviteCode,
		"isAdmin":    true,
		"usageLimit": 999,
		"usedCount":  0,
		"createdAt":  now,
		"expiresAt":  "",
	}

	if err := db.Add(store.KeyUsers, admin); err != nil {
		db.log.Warn("seed admin user failed", zap.Error(err))
	}
	if err := db.Add(store.KeyInviteCodes, invite); err != nil {
		db.log.Warn("seed admin invite code failed", zap.Error(err))
	}
}

// restore 从快照恢复所有对象库及元信息
func (db *DB) restore(m *meta) {
	if raw, err := db.snapshot.Read(metaKey); err == nil {
		if err := json.Unmarshal(raw, m); err != nil {
			db.log.Warn("corrupt objectstore meta, treating as empty", zap.Error(err))
			*m = meta{}
		}
	}

	for name := range db.stores {
		raw, err := db.snapshot.Read(name)
		if err != nil {
			continue
		}
		if err := db.importLocked(name, raw); err != nil {
			// 快照损坏按无数据处理
			db.log.Warn("corrupt objectstore snapshot", zap.String("store", name), zap.Error(err))
		}
	}
}

func (db *DB) persistMeta(m meta) {
	if db.snapshot == nil {
		return
	}
	raw, _ := json.Marshal(m)
	if err := db.snapshot.Write(metaKey, raw); err != nil {
		db.log.Warn("persist objectstore meta failed", zap.Error(err))
	}
}

// persist 将单个对象库落盘，失败只记录日志
func (db *DB) persist(name string) {
	if db.snapshot == nil {
		return
	}
	raw, err := db.exportLocked(name)
	if err != nil {
		db.log.Warn("export for snapshot failed", zap.String("store", name), zap.Error(err))
		return
	}
	if err := db.snapshot.Write(name, raw); err != nil {
		db.log.Warn("persist objectstore snapshot failed", zap.String("store", name), zap.Error(err))
	}
}

func (db *DB) store(name string) (*objStore, error) {
	s, ok := db.stores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, name)
	}
	return s, nil
}

func recordKey(def StoreDef, rec map[string]interface{}) (string, error) {
	v, ok := rec[def.KeyPath]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingKey, def.Name, def.KeyPath)
	}
	key, ok := v.(string)
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingKey, def.Name, def.KeyPath)
	}
	return key, nil
}

// checkUnique 校验唯一约束，忽略主键相同的记录（更新自身）
func (s *objStore) checkUnique(key string, rec map[string]interface{}) error {
	for _, field := range s.def.Unique {
		val, ok := rec[field]
		if !ok || val == "" {
			continue
		}
		for otherKey, other := range s.records {
			if otherKey == key {
				continue
			}
			if other[field] == val {
				return fmt.Errorf("%w: %s.%s=%v", ErrUniqueViolation, s.def.Name, field, val)
			}
		}
	}
	return nil
}

// Add 插入记录；主键已存在时覆盖（先查存在性，再落库）
func (db *DB) Add(name string, rec map[string]interface{}) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, err := db.store(name)
	if err != nil {
		return err
	}
	key, err := recordKey(s.def, rec)
	if err != nil {
		return err
	}
	if err := s.checkUnique(key, rec); err != nil {
		return err
	}

	s.records[key] = cloneRecord(rec)
	db.persist(name)
	return nil
}

// Put 更新或插入记录（upsert），语义与 Add 一致
func (db *DB) Put(name string, rec map[string]interface{}) error {
	return db.Add(name, rec)
}

// GetByID 按主键读取
func (db *DB) GetByID(name, id string) (map[string]interface{}, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, err := db.store(name)
	if err != nil {
		return nil, err
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}
	return cloneRecord(rec), nil
}

// GetAll 返回对象库全部记录，按主键排序
func (db *DB) GetAll(name string) ([]map[string]interface{}, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, err := db.store(name)
	if err != nil {
		return nil, err
	}
	return s.sorted(), nil
}

// GetByIndex 按二级索引字段查询
func (db *DB) GetByIndex(name, field string, value interface{}) ([]map[string]interface{}, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, err := db.store(name)
	if err != nil {
		return nil, err
	}
	if field != s.def.Index {
		return nil, fmt.Errorf("objectstore: %s has no index on %s", name, field)
	}

	var out []map[string]interface{}
	for _, rec := range s.sorted() {
		if rec[field] == value {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Delete 按主键删除，记录不存在也返回成功
func (db *DB) Delete(name, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, err := db.store(name)
	if err != nil {
		return err
	}
	delete(s.records, id)
	db.persist(name)
	return nil
}

// Clear 清空整个对象库
func (db *DB) Clear(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, err := db.store(name)
	if err != nil {
		return err
	}
	s.records = make(map[string]map[string]interface{})
	db.persist(name)
	return nil
}

// ImportCollection 用一个集合的 JSON 数组整体替换对象库内容。
// 网关把远端读到的新鲜数据向下回灌时走这里。
func (db *DB) ImportCollection(name string, raw []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.importLocked(name, raw); err != nil {
		return err
	}
	db.persist(name)
	return nil
}

func (db *DB) importLocked(name string, raw []byte) error {
	s, err := db.store(name)
	if err != nil {
		return err
	}

	var recs []map[string]interface{}
	if err := json.Unmarshal(raw, &recs); err != nil {
		return fmt.Errorf("import %s: %w", name, err)
	}

	fresh := make(map[string]map[string]interface{}, len(recs))
	for _, rec := range recs {
		key, err := recordKey(s.def, rec)
		if err != nil {
			return err
		}
		fresh[key] = rec
	}
	s.records = fresh
	return nil
}

// ExportCollection 导出对象库为 JSON 数组
func (db *DB) ExportCollection(name string) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.exportLocked(name)
}

func (db *DB) exportLocked(name string) ([]byte, error) {
	s, err := db.store(name)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s.sorted())
}

// Count 返回对象库记录数
func (db *DB) Count(name string) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, err := db.store(name)
	if err != nil {
		return 0, err
	}
	return len(s.records), nil
}

func (s *objStore) sorted() []map[string]interface{} {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneRecord(s.records[k]))
	}
	return out
}

func cloneRecord(rec map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	return cp
}
