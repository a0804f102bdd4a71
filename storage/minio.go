package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"ClipForge/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
)

// MediaPrefix 所有素材对象统一放在这个前缀下
const MediaPrefix = "media/"

// InitMinio 初始化 MinIO 客户端并验证读写权限
func InitMinio(cfg *config.Config) error {
	log.Printf("正在连接 MinIO 服务器...")
	log.Printf("Endpoint: %s", cfg.MinioEndpoint)
	log.Printf("Bucket: %s", cfg.MinioBucket)
	if len(cfg.MinioAccessKey) > 4 {
		log.Printf("AccessKey: %s...", cfg.MinioAccessKey[:4])
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("创建 MinIO 客户端失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 检查存储桶是否存在，不存在则创建
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("创建存储桶失败: %v", err)
		}
		log.Printf("✅ 成功创建存储桶: %s", cfg.MinioBucket)
	} else {
		log.Printf("✅ 存储桶已存在: %s", cfg.MinioBucket)
	}

	// 写入一个探测对象，确认凭证有写权限
	probeObject := MediaPrefix + ".connection-check"
	probeContent := "clipforge media store probe, created at " + time.Now().Format(time.RFC3339)
	_, err = client.PutObject(ctx, cfg.MinioBucket, probeObject,
		strings.NewReader(probeContent), int64(len(probeContent)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return fmt.Errorf("上传探测对象失败: %v", err)
	}

	obj, err := client.GetObject(ctx, cfg.MinioBucket, probeObject, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("读取探测对象失败: %v", err)
	}
	defer obj.Close()
	if _, err := io.ReadAll(obj); err != nil {
		return fmt.Errorf("读取探测对象内容失败: %v", err)
	}

	minioClient = client
	log.Println("✅ MinIO 客户端初始化成功！")
	return nil
}

// GetMinioClient 获取 MinIO 客户端实例
func GetMinioClient() *minio.Client {
	return minioClient
}

// PublicURL returns the URL shells use to fetch an object. MinioPublicURL
// wins when set (reverse proxy setups); otherwise the endpoint is used
// directly.
func PublicURL(cfg *config.Config, objectName string) string {
	base := cfg.MinioPublicURL
	if base == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}
	return strings.TrimRight(base, "/") + "/" + objectName
}

// UploadMedia streams a media payload into the store and returns its public
// URL.
func UploadMedia(ctx context.Context, cfg *config.Config, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	client := GetMinioClient()
	if client == nil {
		return "", fmt.Errorf("MinIO 客户端未初始化")
	}
	_, err := client.PutObject(ctx, cfg.MinioBucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s 失败: %v", objectName, err)
	}
	return PublicURL(cfg, objectName), nil
}

// UploadLocalFile copies a file from the local filesystem into the store.
// Used by the watch-folder ingester.
func UploadLocalFile(ctx context.Context, cfg *config.Config, objectName, path, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("打开本地文件 %s 失败: %v", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("读取文件信息失败: %v", err)
	}
	return UploadMedia(ctx, cfg, objectName, f, info.Size(), contentType)
}

// FetchMedia opens a stored object for reading. The caller closes it.
func FetchMedia(ctx context.Context, cfg *config.Config, objectName string) (*minio.Object, error) {
	client := GetMinioClient()
	if client == nil {
		return nil, fmt.Errorf("MinIO 客户端未初始化")
	}
	obj, err := client.GetObject(ctx, cfg.MinioBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 失败: %v", objectName, err)
	}
	return obj, nil
}

// RemoveMedia deletes a single stored object.
func RemoveMedia(ctx context.Context, cfg *config.Config, objectName string) error {
	client := GetMinioClient()
	if client == nil {
		return fmt.Errorf("MinIO 客户端未初始化")
	}
	if err := client.RemoveObject(ctx, cfg.MinioBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象 %s 失败: %v", objectName, err)
	}
	return nil
}
