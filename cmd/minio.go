package cmd

import (
	"context"
	"fmt"
	"log"

	"ClipForge/config"
	"ClipForge/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix  string
	minioUsage   bool
	minioSession string
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `查看和管理MinIO存储桶中的素材文件，支持列出文件、按类型统计占用、清理某个会话的全部素材。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始连接MinIO服务器...")

		// 加载配置
		cfg := config.Load()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		// 初始化MinIO客户端
		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}
		fmt.Println("MinIO连接成功！")

		// 根据参数执行不同的操作
		if minioSession != "" {
			// 清理会话素材
			fmt.Printf("\n删除会话素材: %s\n", minioSession)
			removed, err := storage.RemoveSessionMedia(context.Background(), cfg, minioSession)
			if err != nil {
				log.Fatalf("删除会话素材失败: %v", err)
			}
			fmt.Printf("已删除 %d 个对象\n", removed)
		} else if minioUsage {
			// 按素材类型统计占用
			fmt.Println("\n按素材类型统计存储占用...")
			usage, err := storage.GetBucketUsage(cfg)
			if err != nil {
				log.Fatalf("统计存储占用失败: %v", err)
			}
			for kind, size := range usage {
				fmt.Printf("  %-8s %d bytes\n", kind, size)
			}
		} else {
			// 列出文件
			prefix := minioPrefix
			if prefix == "" {
				prefix = storage.MediaPrefix
			}
			fmt.Printf("\n列出存储桶中的文件 (前缀: %s)...\n", prefix)
			if err := storage.PrintBucketStatus(cfg, prefix); err != nil {
				log.Fatalf("列出文件失败: %v", err)
			}
		}

		fmt.Println("\nMinIO操作完成！")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	// 添加命令行参数
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件")
	minioCmd.Flags().BoolVarP(&minioUsage, "usage", "u", false, "按素材类型统计存储占用")
	minioCmd.Flags().StringVarP(&minioSession, "clean-session", "c", "", "删除指定会话上传的全部素材")

	// 添加使用说明
	minioCmd.Example = `  # 列出所有素材文件
  clipforge minio

  # 按前缀过滤文件
  clipforge minio -p "media/100001/"

  # 按素材类型统计存储占用
  clipforge minio -u

  # 删除某个会话的全部素材
  clipforge minio -c 100001`
}
