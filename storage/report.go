package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"ClipForge/config"
	"ClipForge/model"

	"github.com/minio/minio-go/v7"
)

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType"`
	ETag         string    `json:"etag"`
}

// ListBucketObjects 列出指定前缀下的所有对象
func ListBucketObjects(cfg *config.Config, prefix string, recursive bool) ([]ObjectInfo, *BucketStats, error) {
	client := GetMinioClient()
	if client == nil {
		return nil, nil, fmt.Errorf("MinIO 客户端未初始化")
	}

	ctx := context.Background()
	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := client.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("列出对象时出错: %v", object.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		})
	}

	return objects, stats, nil
}

// GetBucketUsage 按素材类型统计存储占用
func GetBucketUsage(cfg *config.Config) (map[string]int64, error) {
	objects, _, err := ListBucketObjects(cfg, MediaPrefix, true)
	if err != nil {
		return nil, err
	}
	usage := make(map[string]int64)
	for _, obj := range objects {
		usage[model.MediaKindForFile(obj.Key)] += obj.Size
	}
	return usage, nil
}

// PrintBucketStatus 打印存储桶状态，维护命令用
func PrintBucketStatus(cfg *config.Config, prefix string) error {
	objects, stats, err := ListBucketObjects(cfg, prefix, true)
	if err != nil {
		return err
	}

	log.Printf("\n📊 存储桶状态报告: %s", cfg.MinioBucket)
	log.Printf("🔍 前缀过滤: %s", prefix)
	log.Printf("📝 总文件数: %d", stats.TotalObjects)
	log.Printf("💾 总存储大小: %s", formatSize(stats.TotalSize))
	log.Printf("🕒 最后更新时间: %s", stats.LastModified.Format("2006-01-02 15:04:05"))
	log.Printf("\n📋 文件列表:")
	for _, obj := range objects {
		log.Printf("  ├─ %s", obj.Key)
		log.Printf("  │  ├─ 大小: %s", formatSize(obj.Size))
		log.Printf("  │  └─ 修改时间: %s", obj.LastModified.Format("2006-01-02 15:04:05"))
	}

	return nil
}

// RemoveSessionMedia 删除某个会话上传的全部素材对象
func RemoveSessionMedia(ctx context.Context, cfg *config.Config, sessionID string) (int, error) {
	client := GetMinioClient()
	if client == nil {
		return 0, fmt.Errorf("MinIO 客户端未初始化")
	}

	prefix := fmt.Sprintf("%s%s/", MediaPrefix, sessionID)
	listCh := client.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var toDelete []minio.ObjectInfo
	for object := range listCh {
		if object.Err != nil {
			log.Printf("列出对象时出错: %v", object.Err)
			continue
		}
		toDelete = append(toDelete, object)
	}
	if len(toDelete) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(toDelete))
	go func() {
		defer close(objectsCh)
		for _, obj := range toDelete {
			objectsCh <- obj
		}
	}()

	for err := range client.RemoveObjects(ctx, cfg.MinioBucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			return 0, fmt.Errorf("删除对象 %s 失败: %v", err.ObjectName, err.Err)
		}
	}
	return len(toDelete), nil
}

// formatSize 格式化文件大小
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
