package cmd

import (
	"context"
	"fmt"
	"log"

	"ClipForge/cache"
	"ClipForge/config"

	"github.com/spf13/cobra"
)

var redisSession string

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，并可查看某个会话的在线成员状态。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始测试Redis连接...")

		// 加载配置
		cfg := config.Load()
		fmt.Printf("Redis配置: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		// 连接Redis
		if err := cache.ConnectRedis(cfg); err != nil {
			log.Fatalf("无法连接到Redis: %v", err)
		}
		fmt.Println("Redis连接成功！")

		// 测试Redis基本操作
		fmt.Println("开始测试Redis基本操作...")
		if err := cache.TestRedis(); err != nil {
			log.Fatalf("Redis操作测试失败: %v", err)
		}
		fmt.Println("Redis基本操作测试成功！")

		// 查看会话在线状态
		if redisSession != "" {
			ctx := context.Background()
			sessionCache := cache.NewSessionCache()
			members, err := sessionCache.GetMembersOnline(ctx, redisSession)
			if err != nil {
				log.Fatalf("获取在线成员失败: %v", err)
			}
			active, err := sessionCache.GetActiveOnlineCount(ctx, redisSession)
			if err != nil {
				log.Fatalf("获取活跃数失败: %v", err)
			}
			fmt.Printf("会话 %s: %d 个成员记录, %d 个活跃心跳\n", redisSession, len(members), active)
			for _, m := range members {
				fmt.Printf("  ├─ #%d %s\n", m.ClientID, m.Name)
			}
		}

		// 关闭连接
		if err := cache.CloseRedis(); err != nil {
			log.Printf("关闭Redis连接时发生错误: %v", err)
		}
		fmt.Println("Redis测试完成，连接已关闭。")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)

	redisCmd.Flags().StringVarP(&redisSession, "session", "s", "", "查看指定会话的在线成员")
}
