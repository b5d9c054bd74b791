package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/engine"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/logger"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/report"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/storage"
)

var (
	flagconf  string
	flagCoins string
	noSave    bool
	noPrint   bool
	sendMail  bool
)

var rootCmd = &cobra.Command{
	Use:   "coin_radar",
	Short: "coin_radar analyses Reddit sentiment for coins newly listed on Binance.",
	Run: func(cmd *cobra.Command, args []string) {
		run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagconf, "conf", "app/coin_radar/configs/config.yaml", "config path, eg: --conf config.yaml")
	rootCmd.Flags().StringVar(&flagCoins, "coins", "", "comma separated coins, skips the listing scrape")
	rootCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the JSON report")
	rootCmd.Flags().BoolVar(&noPrint, "no-print", false, "do not print the report")
	rootCmd.Flags().BoolVar(&sendMail, "email", false, "send the report by email (requires email.server)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() {
	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if flagCoins != "" {
		cfg.Listing.Provider = "static"
		cfg.Listing.Coins = strings.Split(flagCoins, ",")
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动新币情绪分析...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 数据库可选
	var store *storage.Storage
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅生成 JSON 文件。", err)
		} else {
			store = s
			defer store.Close()
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Debug("未配置数据库信息，跳过数据库连接")
	}

	// 4. 装配引擎并运行
	eng, err := engine.NewFromConfig(ctx, cfg, store)
	if err != nil {
		logger.Log.Errorf("引擎初始化失败: %v", err)
		return
	}

	rep, err := eng.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Log.Warn("分析被用户中断")
			return
		}
		logger.Log.Errorf("分析失败: %v", err)
		return
	}
	if rep.Len() == 0 {
		logger.Log.Info("没有生成任何分析结果")
		return
	}

	// 5. 输出
	if *cfg.Report.Save && !noSave {
		path, err := report.SaveJSON(cfg.Report.Dir, rep, time.Now())
		if err != nil {
			logger.Log.Errorf("保存报告失败: %v", err)
		} else {
			logger.Log.Infof("报告已保存到 %s", path)
		}
	}

	if *cfg.Report.Print && !noPrint {
		report.Print(os.Stdout, rep)
	}

	if sendMail {
		if !cfg.EmailEnabled() {
			logger.Log.Warn("未配置 email.server，跳过邮件发送")
		} else if err := report.NewMailer(cfg.Email).Send(rep); err != nil {
			logger.Log.Errorf("邮件发送失败: %v", err)
		} else {
			logger.Log.Infof("报告邮件已发送至 %v", cfg.Email.To)
		}
	}

	logger.Log.Infof("✅ 分析完成，共 %d 个币种", rep.Len())
}
