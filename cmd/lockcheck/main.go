// lockcheckはロゴロックをローカルのファイルに対して1回実行する確認用コマンドです。
// 検出・合成・検証の診断メタデータをJSONで標準出力へ書き出します。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	lockadapters "slidegen_backend/internal/feature/logolock/adapters"
	"slidegen_backend/internal/feature/logolock/match"
	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/feature/logolock/usecase"
)

func main() {
	source := flag.String("source", "", "元スライド画像のパス")
	generated := flag.String("generated", "", "生成スライド画像のパス")
	logoDir := flag.String("logos", "./data/logos", "参照ロゴのディレクトリ")
	out := flag.String("out", "", "合成結果PNGの出力先（省略時は書き出さない）")
	tolerance := flag.Float64("tolerance", 0, "忠実度検証の許容値（0なら既定値）")
	skipVerify := flag.Bool("skip-verify", false, "忠実度検証を省略する")
	missing := flag.String("missing", "skip", "参照ロゴ欠落時の扱い（skip|fail）")
	flag.Parse()

	if *source == "" || *generated == "" {
		flag.Usage()
		os.Exit(2)
	}

	srcImg, err := raster.Open(*source)
	if err != nil {
		log.Fatal("failed to load source slide:", err)
	}
	genData, err := os.ReadFile(*generated)
	if err != nil {
		log.Fatal("failed to load generated slide:", err)
	}
	names, err := logoNames(*logoDir)
	if err != nil {
		log.Fatal("failed to list logos:", err)
	}

	opts := usecase.Options{VerifyTolerance: *tolerance, SkipVerify: *skipVerify}
	if *missing == "fail" {
		opts.MissingRef = usecase.MissingFail
	}
	uc := usecase.NewLockUsecase(lockadapters.NewDirLogoSource(*logoDir), match.NewSearcher(), opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, lockErr := uc.Lock(ctx, srcImg, names, genData)

	// 診断メタデータは成否に関わらず出力する
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Metadata); err != nil {
		log.Fatal(err)
	}

	if lockErr != nil {
		log.Fatal(lockErr)
	}
	if *out != "" {
		if err := os.WriteFile(*out, result.Image, 0o644); err != nil {
			log.Fatal("failed to write locked image:", err)
		}
	}
	log.Println("lock ok")
}

// logoNames はディレクトリ直下のファイル名一覧を返します。
func logoNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
