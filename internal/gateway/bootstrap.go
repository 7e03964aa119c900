package gateway

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"video_promo_shop/internal/pkg/config"
	"video_promo_shop/pkg/metrics"
	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/store/filestore"
	"video_promo_shop/pkg/store/mirror"
	"video_promo_shop/pkg/store/objectstore"
)

// Client 同步层的完整装配：网关和监视器共享同一个连通性状态
// 和同一套本地存储链。
type Client struct {
	Conn    *Connectivity
	Gateway *Gateway
	Monitor *Monitor
}

// NewClient 按 sync 配置装配同步层。snapshot_dir 非空时文件缓存
// 落在 <snapshot_dir>/cache、对象库快照落在 <snapshot_dir>/objects、
// 镜像（含登录态）落在 <snapshot_dir>/mirror，进程重启后恢复；
// 为空则全部驻留内存。
func NewClient(cfg config.SyncConfig, log *zap.Logger, collector *metrics.Collector) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var files, snapshot store.Store
	mir := mirror.New()
	if cfg.SnapshotDir != "" {
		cacheDir, err := filestore.NewDirStore(filepath.Join(cfg.SnapshotDir, "cache"))
		if err != nil {
			return nil, err
		}
		objectsDir, err := filestore.NewDirStore(filepath.Join(cfg.SnapshotDir, "objects"))
		if err != nil {
			return nil, err
		}
		mirrorDir, err := filestore.NewDirStore(filepath.Join(cfg.SnapshotDir, "mirror"))
		if err != nil {
			return nil, err
		}
		files, snapshot = cacheDir, objectsDir
		mir = mirror.NewPersistent(mirrorDir)
	} else {
		files, snapshot = filestore.NewMemStore(), filestore.NewMemStore()
	}

	objects, err := objectstore.Open(objectstore.Options{Snapshot: snapshot, Logger: log})
	if err != nil {
		return nil, err
	}

	conn := NewConnectivity(true)
	gw := New(Options{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		Conn:           conn,
		Mirror:         mir,
		Files:          files,
		Objects:        objects,
		Logger:         log,
		Metrics:        collector,
	})
	mon := NewMonitor(MonitorOptions{
		BaseURL:      cfg.BaseURL,
		ProbeTimeout: time.Duration(cfg.ProbeTimeoutSeconds) * time.Second,
		PollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		Conn:         conn,
		Logger:       log,
		Metrics:      collector,
	})

	return &Client{Conn: conn, Gateway: gw, Monitor: mon}, nil
}
