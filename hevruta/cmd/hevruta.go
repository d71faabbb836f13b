// Command-line maintenance entrypoint: seed admins, export documents.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"hevruta/hevruta/config"
	"hevruta/hevruta/services/pdf"
	"hevruta/hevruta/sources/psql"
	"hevruta/hevruta/sources/psql/dao"
	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/logging"

	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	args := os.Args[1:]
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "create-admin":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		createAdmin(ctx, cfg, args[1])
	case "export-pdf":
		if len(args) != 3 {
			usage()
			os.Exit(1)
		}
		exportPDF(ctx, cfg, args[1], args[2])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  hevruta create-admin <email>")
	fmt.Println("  hevruta export-pdf <in.html> <out.pdf>")
}

func createAdmin(ctx context.Context, cfg config.Config, email string) {
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	userDAO := dao.NewUserDAO(db.DB)
	existing, err := userDAO.GetUser(ctx, email)
	if err != nil {
		logging.ErrorLogger.Error("user lookup error", zap.Error(err))
		os.Exit(1)
	}
	if existing != nil {
		if _, err := userDAO.UpdateRole(ctx, email, models.RoleAdmin); err != nil {
			logging.ErrorLogger.Error("role update error", zap.Error(err))
			os.Exit(1)
		}
		fmt.Println("promoted existing user to admin:", email)
		return
	}
	if _, err := userDAO.CreateUser(ctx, email, models.RoleAdmin, nil); err != nil {
		logging.ErrorLogger.Error("user create error", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println("created admin:", email)
}

func exportPDF(ctx context.Context, cfg config.Config, inPath, outPath string) {
	html, err := os.ReadFile(inPath)
	if err != nil {
		logging.ErrorLogger.Error("read input error", zap.Error(err))
		os.Exit(1)
	}

	opts, err := pdf.LoadOptions(cfg.PDFPresetPath)
	if err != nil {
		logging.ErrorLogger.Error("pdf preset load error", zap.Error(err))
		os.Exit(1)
	}
	renderer, err := pdf.NewRenderer(opts)
	if err != nil {
		logging.ErrorLogger.Error("pdf renderer init error", zap.Error(err))
		os.Exit(1)
	}
	defer renderer.Close()

	data, title, err := renderer.Render(ctx, string(html), "")
	if err != nil {
		logging.ErrorLogger.Error("render error", zap.Error(err))
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logging.ErrorLogger.Error("write output error", zap.Error(err))
		os.Exit(1)
	}
	fmt.Printf("exported %q (%d bytes) to %s\n", title, len(data), outPath)
}
