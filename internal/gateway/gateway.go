// Package gateway 实现离线优先的数据同步层：
// 把每个数据操作代理到远端 HTTP API，远端不可达时降级到本地
// 持久层（文件缓存 + 本地对象库 + 内存镜像），远端读到的新鲜数据
// 会机会性地回灌到各本地层。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video_promo_shop/pkg/metrics"
	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/store/mirror"
	"video_promo_shop/pkg/store/objectstore"
)

// Freshness 标记读结果的来源，调用方可以区分
// "远端新鲜数据" 和 "降级的本地数据"，两者不再都伪装成普通成功
type Freshness int

const (
	// FreshRemote 数据来自远端 API
	FreshRemote Freshness = iota
	// StaleLocal 数据来自本地层，可能过期
	StaleLocal
)

func (f Freshness) String() string {
	if f == FreshRemote {
		return "remote"
	}
	return "local"
}

var (
	// ErrInvalidCredentials 用户名或密码错误（登录业务失败，不触发离线回退）
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrNotLoggedIn 没有可用的登录态
	ErrNotLoggedIn = errors.New("未登录")
)

// API 领域管理器使用的数据操作面
type API interface {
	GetData(ctx context.Context, key string) (json.RawMessage, Freshness, error)
	SaveData(ctx context.Context, key string, value interface{}) error
	DeleteData(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, Freshness, error)
}

// Options 网关构造选项
type Options struct {
	BaseURL        string
	RequestTimeout time.Duration // 默认 5s
	Conn           *Connectivity
	Mirror         *mirror.Mirror
	Files          store.Store
	Objects        *objectstore.DB
	Logger         *zap.Logger
	Metrics        *metrics.Collector // 可为 nil
}

// Gateway 网络网关
type Gateway struct {
	base    string
	client  *http.Client
	conn    *Connectivity
	mirror  *mirror.Mirror
	files   store.Store
	objects *objectstore.DB
	log     *zap.Logger
	metrics *metrics.Collector
}

// New 创建网关
func New(opts Options) *Gateway {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	g := &Gateway{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		conn:    opts.Conn,
		mirror:  opts.Mirror,
		files:   opts.Files,
		objects: opts.Objects,
		log:     log,
		metrics: opts.Metrics,
	}

	if g.metrics != nil {
		g.metrics.SetOfflineMode(!g.conn.Online())
		g.conn.Subscribe(func(online bool) {
			g.metrics.SetOfflineMode(!online)
		})
	}

	return g
}

// apiResponse 远端统一响应
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Keys    []string        `json:"keys"`
	User    json.RawMessage `json:"user"`
	Token   string          `json:"token"`
}

// GetData 读取集合。在线时远端优先（远端总是赢），远端成功后
// 数据回灌到镜像/文件缓存/对象库；传输失败降级到本地链。
func (g *Gateway) GetData(ctx context.Context, key string) (json.RawMessage, Freshness, error) {
	if g.conn.Online() {
		raw, err := g.remoteGetData(ctx, key)
		if err == nil {
			g.conn.MarkOnline()
			g.record("getData", "remote")
			if raw != nil {
				g.fanOut(key, raw)
			}
			return raw, FreshRemote, nil
		}
		g.degrade("getData", key, err)
	}

	raw := g.localGet(key)
	g.record("getData", "local")
	return raw, StaleLocal, nil
}

// localGet 依次尝试镜像、文件缓存、对象库；全部未命中按无数据处理
func (g *Gateway) localGet(key string) json.RawMessage {
	if raw, ok := g.mirror.Get(key); ok {
		g.cacheHit("mirror")
		return raw
	}
	g.cacheMiss("mirror")

	if raw, err := g.files.Read(key); err == nil {
		g.cacheHit("files")
		g.fallback("files")
		g.mirror.Set(key, raw)
		return raw
	}
	g.cacheMiss("files")

	if isCollection(key) {
		if n, err := g.objects.Count(key); err == nil && n > 0 {
			if raw, err := g.objects.ExportCollection(key); err == nil {
				g.cacheHit("objects")
				g.fallback("objects")
				g.mirror.Set(key, raw)
				return raw
			}
		}
	}
	g.cacheMiss("objects")
	return nil
}

// SaveData 写入集合。所有持久化尝试相互独立、尽力而为：
// 单层失败只记录日志，不影响其他层，也不回滚。
func (g *Gateway) SaveData(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	g.mirror.Set(key, raw)

	if err := g.files.Write(key, raw); err != nil {
		g.log.Warn("file store write failed", zap.String("key", key), zap.Error(err))
	}
	if isCollection(key) {
		if err := g.objects.ImportCollection(key, raw); err != nil {
			g.log.Warn("object store import failed", zap.String("key", key), zap.Error(err))
		}
	}

	if g.conn.Online() {
		if err := g.remoteSaveData(ctx, key, raw); err != nil {
			g.degrade("saveData", key, err)
			g.record("saveData", "local")
			return nil
		}
		g.conn.MarkOnline()
		g.record("saveData", "remote")
		return nil
	}

	g.record("saveData", "local")
	return nil
}

// DeleteData 删除集合，三个本地层加远端都尽力删除，整体幂等
func (g *Gateway) DeleteData(ctx context.Context, key string) error {
	g.mirror.Delete(key)

	if err := g.files.Delete(key); err != nil {
		g.log.Warn("file store delete failed", zap.String("key", key), zap.Error(err))
	}
	if isCollection(key) {
		if err := g.objects.Clear(key); err != nil {
			g.log.Warn("object store clear failed", zap.String("key", key), zap.Error(err))
		}
	}

	if g.conn.Online() {
		if err := g.remoteDeleteData(ctx, key); err != nil {
			g.degrade("deleteData", key, err)
			g.record("deleteData", "local")
			return nil
		}
		g.conn.MarkOnline()
		g.record("deleteData", "remote")
		return nil
	}

	g.record("deleteData", "local")
	return nil
}

// Keys 枚举集合名。离线时返回固定的已知集合列表，
// 而不是真实目录枚举。
func (g *Gateway) Keys(ctx context.Context) ([]string, Freshness, error) {
	if g.conn.Online() {
		keys, err := g.remoteKeys(ctx)
		if err == nil {
			g.conn.MarkOnline()
			g.record("getAllKeys", "remote")
			return keys, FreshRemote, nil
		}
		g.degrade("getAllKeys", "", err)
	}

	g.record("getAllKeys", "local")
	return store.Collections(), StaleLocal, nil
}

// Login 登录。在线路径把凭据提交给远端并保存会话；
// 传输失败时只做一次离线登录尝试（不递归）。
// 远端明确拒绝（401）属于业务失败，不触发离线回退。
func (g *Gateway) Login(ctx context.Context, username, password string) (map[string]interface{}, string, error) {
	if g.conn.Online() {
		user, token, err := g.remoteLogin(ctx, username, password)
		switch {
		case err == nil:
			g.conn.MarkOnline()
			g.record("login", "remote")
			g.persistSession(user, token)
			return user, token, nil
		case errors.Is(err, ErrInvalidCredentials):
			return nil, "", err
		default:
			g.degrade("login", "", err)
		}
	}

	return g.offlineLogin(username, password)
}

// offlineLogin 在本地对象库里按用户名/邮箱加密码精确匹配，
// 命中后合成本地令牌 offline_<时间戳>_<随机段>
func (g *Gateway) offlineLogin(username, password string) (map[string]interface{}, string, error) {
	users, err := g.objects.GetAll(store.KeyUsers)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	for _, u := range users {
		name, _ := u["name"].(string)
		email, _ := u["email"].(string)
		pass, _ := u["password"].(string)
		if (name == username || email == username) && pass == password {
			token := fmt.Sprintf("offline_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
			g.record("login", "local")
			g.persistSession(u, token)
			return u, token, nil
		}
	}

	g.record("login", "error")
	return nil, "", ErrInvalidCredentials
}

// Logout 无条件清空本地登录态，然后尽力通知远端；
// 远端失败被吞掉，因为本地状态已经清理完毕。
func (g *Gateway) Logout(ctx context.Context) error {
	token := g.Token()
	g.mirror.Delete(mirror.KeyAuthToken)
	g.mirror.Delete(mirror.KeyCurrentUser)

	if token != "" && g.conn.Online() {
		if err := g.remoteLogout(ctx, token); err != nil {
			g.log.Warn("remote logout failed, local state already cleared", zap.Error(err))
		}
	}
	return nil
}

// CurrentUser 返回当前登录用户。离线或远端失败时用本地缓存，
// 远端成功时刷新本地缓存。
func (g *Gateway) CurrentUser(ctx context.Context) (map[string]interface{}, Freshness, error) {
	token := g.Token()
	if token == "" {
		return nil, StaleLocal, ErrNotLoggedIn
	}

	if g.conn.Online() && !strings.HasPrefix(token, "offline_") {
		user, err := g.remoteMe(ctx, token)
		switch {
		case err == nil:
			g.conn.MarkOnline()
			g.persistSession(user, token)
			return user, FreshRemote, nil
		case errors.Is(err, ErrNotLoggedIn):
			return nil, FreshRemote, ErrNotLoggedIn
		default:
			g.degrade("getCurrentUser", "", err)
		}
	}

	var user map[string]interface{}
	if err := g.mirror.GetInto(mirror.KeyCurrentUser, &user); err != nil {
		return nil, StaleLocal, ErrNotLoggedIn
	}
	return user, StaleLocal, nil
}

// Token 返回当前令牌，没有登录态时为空串
func (g *Gateway) Token() string {
	var token string
	if err := g.mirror.GetInto(mirror.KeyAuthToken, &token); err != nil {
		return ""
	}
	return token
}

// persistSession 把令牌和用户记录写进镜像，并同步到对象库
func (g *Gateway) persistSession(user map[string]interface{}, token string) {
	if err := g.mirror.SetValue(mirror.KeyAuthToken, token); err != nil {
		g.log.Warn("persist token failed", zap.Error(err))
	}
	if err := g.mirror.SetValue(mirror.KeyCurrentUser, user); err != nil {
		g.log.Warn("persist current user failed", zap.Error(err))
	}
	if user != nil {
		if err := g.objects.Put(store.KeyUsers, user); err != nil {
			g.log.Warn("object store user upsert failed", zap.Error(err))
		}
	}
}

// fanOut 把远端新鲜数据回灌到各本地层（远端总是赢）
func (g *Gateway) fanOut(key string, raw json.RawMessage) {
	g.mirror.Set(key, raw)
	if err := g.files.Write(key, raw); err != nil {
		g.log.Warn("file store warm failed", zap.String("key", key), zap.Error(err))
	}
	if isCollection(key) {
		if err := g.objects.ImportCollection(key, raw); err != nil {
			g.log.Warn("object store warm failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// degrade 远端传输失败：打上离线标志并记录
func (g *Gateway) degrade(op, key string, err error) {
	g.conn.MarkOffline()
	g.log.Warn("remote unreachable, degrading to local stores",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	g.record(op, "error")
}

// --- 远端调用 ---

func (g *Gateway) remoteGetData(ctx context.Context, key string) (json.RawMessage, error) {
	resp, err := g.do(ctx, http.MethodGet, "/api/data/"+key, nil, "")
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, nil
	}
	return resp.Data, nil
}

func (g *Gateway) remoteSaveData(ctx context.Context, key string, raw json.RawMessage) error {
	body, _ := json.Marshal(map[string]json.RawMessage{"data": raw})
	_, err := g.do(ctx, http.MethodPost, "/api/data/"+key, body, "")
	return err
}

func (g *Gateway) remoteDeleteData(ctx context.Context, key string) error {
	_, err := g.do(ctx, http.MethodDelete, "/api/data/"+key, nil, "")
	return err
}

func (g *Gateway) remoteKeys(ctx context.Context) ([]string, error) {
	resp, err := g.do(ctx, http.MethodGet, "/api/keys", nil, "")
	if err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

func (g *Gateway) remoteLogin(ctx context.Context, username, password string) (map[string]interface{}, string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})

	resp, status, err := g.doRaw(ctx, http.MethodPost, "/api/auth/login", body, "")
	if err != nil {
		return nil, "", err
	}
	if status == http.StatusUnauthorized || !resp.Success {
		return nil, "", ErrInvalidCredentials
	}

	var user map[string]interface{}
	if err := json.Unmarshal(resp.User, &user); err != nil {
		return nil, "", fmt.Errorf("decode login user: %w", err)
	}
	return user, resp.Token, nil
}

func (g *Gateway) remoteLogout(ctx context.Context, token string) error {
	_, err := g.do(ctx, http.MethodPost, "/api/auth/logout", nil, token)
	return err
}

func (g *Gateway) remoteMe(ctx context.Context, token string) (map[string]interface{}, error) {
	resp, status, err := g.doRaw(ctx, http.MethodGet, "/api/auth/me", nil, token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || !resp.Success {
		return nil, ErrNotLoggedIn
	}

	var user map[string]interface{}
	if err := json.Unmarshal(resp.User, &user); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return user, nil
}

// do 发送请求并要求远端返回 success，非 2xx/业务失败转为错误
func (g *Gateway) do(ctx context.Context, method, path string, body []byte, token string) (*apiResponse, error) {
	resp, status, err := g.doRaw(ctx, method, path, body, token)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 || !resp.Success {
		return nil, fmt.Errorf("remote %s %s: status %d: %s", method, path, status, resp.Message)
	}
	return resp, nil
}

// doRaw 发送请求，返回解析后的响应和 HTTP 状态码。
// 仅传输层问题（连接失败、超时、响应不可解析）返回 error。
func (g *Gateway) doRaw(ctx context.Context, method, path string, body []byte, token string) (*apiResponse, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	httpResp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, 0, err
	}

	var resp apiResponse
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &resp); err != nil {
			return nil, 0, fmt.Errorf("decode response: %w", err)
		}
	}
	return &resp, httpResp.StatusCode, nil
}

// --- 指标辅助 ---

func (g *Gateway) record(op, outcome string) {
	if g.metrics != nil {
		g.metrics.RecordGatewayRequest(op, outcome)
	}
}

func (g *Gateway) fallback(layer string) {
	if g.metrics != nil {
		g.metrics.RecordStoreFallback(layer)
	}
}

func (g *Gateway) cacheHit(layer string) {
	if g.metrics != nil {
		g.metrics.RecordCacheHit(layer)
	}
}

func (g *Gateway) cacheMiss(layer string) {
	if g.metrics != nil {
		g.metrics.RecordCacheMiss(layer)
	}
}

func isCollection(key string) bool {
	for _, c := range store.Collections() {
		if c == key {
			return true
		}
	}
	return false
}
