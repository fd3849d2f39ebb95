// Package usecase はロゴロックのビジネスロジックを提供します。
// 検出 → 合成 → 検証の一連の流れを1つのユースケースとして調停します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sync"

	"slidegen_backend/internal/feature/logolock/domain/entity"
	"slidegen_backend/internal/feature/logolock/match"
	"slidegen_backend/internal/feature/logolock/raster"
)

const (
	// DefaultVerifyTolerance は忠実度検証の既定の許容値です。
	DefaultVerifyTolerance = 0.08
	// verifyAlphaMin は検証の比較対象に含めるアルファ値の下限です。
	verifyAlphaMin = 20
)

// MissingRefPolicy は参照ロゴが見つからない場合の扱いです。
type MissingRefPolicy int

const (
	// MissingSkip は欠落した参照を黙って読み飛ばします（既定）。
	MissingSkip MissingRefPolicy = iota
	// MissingFail は欠落を検出失敗として扱います。
	MissingFail
)

// Options はロック処理の調整可能な方針です。ゼロ値が既定動作です。
type Options struct {
	// MissingRef は参照ロゴ欠落時の方針です。
	MissingRef MissingRefPolicy
	// VerifyTolerance は忠実度検証の許容値です。0以下なら既定値を使います。
	VerifyTolerance float64
	// SkipVerify は忠実度検証を行わずに成功を返します（診断用途）。
	SkipVerify bool
}

// LogoSource はロゴ参照画像の読み込みを抽象化します。
// Goの慣例に従い、インターフェースは利用者（ユースケース）側で定義します。
// 参照が存在しない場合は errors.Is(err, fs.ErrNotExist) を満たすエラーを
// 返してください。欠落の扱いはOptionsの方針に従います。
type LogoSource interface {
	Load(name string) (*raster.Raw, error)
}

// CandidateSearcher はロゴ1件のマルチスケール探索を抽象化します。
type CandidateSearcher interface {
	Search(ctx context.Context, source, logo *raster.Raw) ([]match.Candidate, error)
}

var _ CandidateSearcher = (*match.Searcher)(nil)

// LockUsecase はロゴロックを実行するユースケースです。
type LockUsecase struct {
	logos    LogoSource
	searcher CandidateSearcher
	opts     Options
}

// NewLockUsecase はLockUsecaseを生成します。
func NewLockUsecase(logos LogoSource, searcher CandidateSearcher, opts Options) *LockUsecase {
	return &LockUsecase{logos: logos, searcher: searcher, opts: opts}
}

// logoRef は読み込みとトリムを終えた参照ロゴです。
type logoRef struct {
	name  string
	image *raster.Raw
}

// placement は生成画像座標系での1ロゴの貼り付け内容です。
// imageは目標寸法へリサイズ済みで、検証時の期待値にもなります。
type placement struct {
	image *raster.Raw
	x, y  int
}

// Lock はsourceで検出した各ロゴをgeneratedへ移植し、忠実度を検証します。
// logoNamesの各要素はLogoSourceに渡す識別子です。
//
// 戻り値のLockResultは失敗時も診断メタデータを保持します。エラーの種別は
// DetectionError / SizeReadError / VerificationError のいずれか、または
// コンテキスト取り消し等の伝播エラーです。いずれも再試行はしません。
func (u *LockUsecase) Lock(ctx context.Context, source *raster.Raw, logoNames []string, generated []byte) (*entity.LockResult, error) {
	refs, err := u.loadRefs(logoNames)
	if err != nil {
		md := entity.LockMetadata{Message: err.Error()}
		return &entity.LockResult{OK: false, Metadata: md}, err
	}

	// 参照が1つもなければ生成画像を無加工で通します。
	if len(refs) == 0 {
		return &entity.LockResult{
			OK:       true,
			Image:    append([]byte(nil), generated...),
			Metadata: entity.LockMetadata{Applied: false},
		}, nil
	}

	md := entity.LockMetadata{LogoCount: len(refs)}

	dets, err := u.detectAll(ctx, source, refs)
	md.Detections = dets
	if err != nil {
		md.Message = err.Error()
		return &entity.LockResult{OK: false, Metadata: md}, err
	}

	canvas, places, err := composite(source, refs, dets, generated)
	if err != nil {
		md.Message = err.Error()
		return &entity.LockResult{OK: false, Metadata: md}, err
	}
	md.Applied = true

	encoded, err := canvas.EncodePNG()
	if err != nil {
		err = fmt.Errorf("合成結果のエンコードに失敗しました: %w", err)
		md.Message = err.Error()
		return &entity.LockResult{OK: false, Metadata: md}, err
	}

	if u.opts.SkipVerify {
		return &entity.LockResult{OK: true, Image: encoded, Metadata: md}, nil
	}

	scores, worst, err := verifyAll(encoded, places)
	md.VerificationScores = scores
	if err != nil {
		md.Message = err.Error()
		return &entity.LockResult{OK: false, Metadata: md}, err
	}

	tol := u.opts.VerifyTolerance
	if tol <= 0 {
		tol = DefaultVerifyTolerance
	}
	if worst > tol {
		verr := &VerificationError{WorstScore: worst, Tolerance: tol}
		md.Message = verr.Error()
		return &entity.LockResult{OK: false, Metadata: md}, verr
	}

	md.Verified = true
	return &entity.LockResult{OK: true, Image: encoded, Metadata: md}, nil
}

// loadRefs は参照ロゴを読み込み、トリムして返します。
// 欠落した参照はOptionsの方針に従って読み飛ばすか失敗させます。
func (u *LockUsecase) loadRefs(names []string) ([]logoRef, error) {
	var refs []logoRef
	for _, name := range names {
		img, err := u.logos.Load(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if u.opts.MissingRef == MissingFail {
					return nil, &DetectionError{Logo: name}
				}
				continue
			}
			return nil, fmt.Errorf("ロゴ参照 %q の読み込みに失敗しました: %w", name, err)
		}
		refs = append(refs, logoRef{name: name, image: img.Trim()})
	}
	return refs, nil
}

// detectAll は各ロゴの探索を並列に実行し、全件の完了を待ってから
// 入力順で最初のエラーを返します。部分的な成功は検出リストとして残ります。
func (u *LockUsecase) detectAll(ctx context.Context, source *raster.Raw, refs []logoRef) ([]entity.Detection, error) {
	found := make([]*entity.Detection, len(refs))
	errs := make([]error, len(refs))

	var wg sync.WaitGroup
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cands, err := u.searcher.Search(ctx, source, refs[i].image)
			if err != nil {
				errs[i] = fmt.Errorf("ロゴ %q の探索に失敗しました: %w", refs[i].name, err)
				return
			}
			if len(cands) == 0 {
				errs[i] = &DetectionError{Logo: refs[i].name}
				return
			}
			best := cands[0]
			found[i] = &entity.Detection{
				Logo:  refs[i].name,
				X:     best.Box.X,
				Y:     best.Box.Y,
				W:     best.Box.W,
				H:     best.Box.H,
				Score: best.Score,
			}
		}(i)
	}
	wg.Wait()

	var dets []entity.Detection
	for _, d := range found {
		if d != nil {
			dets = append(dets, *d)
		}
	}
	for _, err := range errs {
		if err != nil {
			return dets, err
		}
	}
	return dets, nil
}

// composite は生成画像を復号し、各検出位置へロゴを貼り付けます。
// 原寸スライド座標から生成画像座標への縮尺は軸ごとに独立に扱います。
func composite(source *raster.Raw, refs []logoRef, dets []entity.Detection, generated []byte) (*raster.Raw, []placement, error) {
	gw, gh, err := raster.DecodeSize(generated)
	if err != nil {
		return nil, nil, &SizeReadError{Reason: err}
	}
	canvas, err := raster.Decode(generated)
	if err != nil {
		return nil, nil, &SizeReadError{Reason: err}
	}

	sx := float64(gw) / float64(source.W)
	sy := float64(gh) / float64(source.H)

	byName := make(map[string]*raster.Raw, len(refs))
	for _, r := range refs {
		byName[r.name] = r.image
	}

	places := make([]placement, 0, len(dets))
	for _, d := range dets {
		tw := max(1, int(math.Round(float64(d.W)*sx)))
		th := max(1, int(math.Round(float64(d.H)*sy)))
		tx := int(math.Round(float64(d.X) * sx))
		ty := int(math.Round(float64(d.Y) * sy))
		scaled := byName[d.Logo].Resize(tw, th)
		// 貼り付けは後勝ちです。検出同士の重なりは順序で解決します。
		canvas = raster.Overlay(canvas, scaled, tx, ty)
		places = append(places, placement{image: scaled, x: tx, y: ty})
	}
	return canvas, places, nil
}

// verifyAll はエンコード済みの合成結果を読み直し、各貼り付け先を
// 目標寸法の参照ロゴと画素単位で比較します。
func verifyAll(encoded []byte, places []placement) ([]float64, float64, error) {
	reread, err := raster.Decode(encoded)
	if err != nil {
		return nil, 0, fmt.Errorf("合成結果の読み直しに失敗しました: %w", err)
	}

	scores := make([]float64, len(places))
	worst := 0.0
	for i, p := range places {
		scores[i] = fidelityScore(reread, p.image, p.x, p.y)
		if scores[i] > worst {
			worst = scores[i]
		}
	}
	return scores, worst, nil
}

// fidelityScore は参照ロゴのアルファがverifyAlphaMin以上のピクセルについて、
// 4チャンネルそれぞれを1サンプルとして |Δ|/255 の平均を返します。
// キャンバス外にはみ出した部分は比較対象から外れます。
func fidelityScore(canvas, ref *raster.Raw, ox, oy int) float64 {
	var sum, n int64
	for y := 0; y < ref.H; y++ {
		cy := oy + y
		if cy < 0 || cy >= canvas.H {
			continue
		}
		for x := 0; x < ref.W; x++ {
			cx := ox + x
			if cx < 0 || cx >= canvas.W {
				continue
			}
			ri := (y*ref.W + x) * 4
			if ref.Pix[ri+3] < verifyAlphaMin {
				continue
			}
			ci := (cy*canvas.W + cx) * 4
			for c := 0; c < 4; c++ {
				d := int64(canvas.Pix[ci+c]) - int64(ref.Pix[ri+c])
				if d < 0 {
					d = -d
				}
				sum += d
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / (255 * float64(n))
}
