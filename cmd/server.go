package cmd

import (
	"ClipForge/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动ClipForge服务器",
	Long:  `启动ClipForge时间线编辑系统的HTTP服务器，提供API服务、WebSocket协作和Web界面`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
