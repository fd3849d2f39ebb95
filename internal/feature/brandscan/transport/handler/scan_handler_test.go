package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidegen_backend/internal/api"
	"slidegen_backend/internal/feature/brandscan/domain/entity"
	"slidegen_backend/internal/feature/brandscan/transport/handler"
	"slidegen_backend/internal/feature/brandscan/usecase"
)

// mockScanUsecase はScanUsecaseインターフェースのモック実装です。
type mockScanUsecase struct {
	ScanFunc func(ctx context.Context, imageData []byte) (*entity.ScanReport, error)
}

func (m *mockScanUsecase) Scan(ctx context.Context, imageData []byte) (*entity.ScanReport, error) {
	return m.ScanFunc(ctx, imageData)
}

// scanRequest はimageフィールド付きのマルチパートPOSTを組み立てます。
func scanRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "slide.png")
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/brandscan", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func performScan(h *handler.ScanHandler, req *http.Request) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/brandscan", h.Scan)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScanHandler_Scan(t *testing.T) {
	t.Run("正常系: 走査レポートを返す", func(t *testing.T) {
		var gotData []byte
		mock := &mockScanUsecase{
			ScanFunc: func(_ context.Context, imageData []byte) (*entity.ScanReport, error) {
				gotData = imageData
				return &entity.ScanReport{
					Logos:     []entity.ScannedLogo{{Name: "Acme", Confidence: 0.95}},
					Palette:   []string{"#112233", "#445566"},
					Dominant:  "#112233",
					MeanLuma:  0.42,
					LumaStdev: 0.07,
				}, nil
			},
		}
		h := handler.NewScanHandler(mock)

		rec := performScan(h, scanRequest(t, []byte("fake-image")))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []byte("fake-image"), gotData)

		var resp api.BrandScanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Logos, 1)
		assert.Equal(t, "Acme", resp.Logos[0].Name)
		assert.InDelta(t, 0.95, resp.Logos[0].Confidence, 1e-6)
		assert.Equal(t, []string{"#112233", "#445566"}, resp.Palette)
		assert.Equal(t, "#112233", resp.Dominant)
		assert.InDelta(t, 0.42, resp.MeanLuma, 1e-9)
		assert.InDelta(t, 0.07, resp.LumaStdev, 1e-9)
	})

	t.Run("正常系: ロゴなしでも空配列を返す", func(t *testing.T) {
		mock := &mockScanUsecase{
			ScanFunc: func(_ context.Context, _ []byte) (*entity.ScanReport, error) {
				return &entity.ScanReport{Dominant: "#ffffff"}, nil
			},
		}
		h := handler.NewScanHandler(mock)

		rec := performScan(h, scanRequest(t, []byte("fake-image")))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "[]", string(resp["logos"]))
	})

	t.Run("異常系: imageフィールドがないと400", func(t *testing.T) {
		mock := &mockScanUsecase{
			ScanFunc: func(_ context.Context, _ []byte) (*entity.ScanReport, error) {
				t.Error("ユースケースが呼ばれてはいけない")
				return nil, nil
			},
		}
		h := handler.NewScanHandler(mock)

		req := httptest.NewRequest(http.MethodPost, "/v1/brandscan", bytes.NewReader(nil))
		rec := performScan(h, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "画像ファイルが必要です", resp.Error)
	})

	t.Run("異常系: 走査できない入力は400", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
		}{
			{"空データ", usecase.ErrEmptyImage},
			{"サイズ超過", fmt.Errorf("%w of 10485760 bytes", usecase.ErrImageTooLarge)},
			{"復号不能", fmt.Errorf("%w: bad header", usecase.ErrUnsupportedImage)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mock := &mockScanUsecase{
					ScanFunc: func(_ context.Context, _ []byte) (*entity.ScanReport, error) {
						return nil, tt.err
					},
				}
				h := handler.NewScanHandler(mock)

				rec := performScan(h, scanRequest(t, []byte("x")))

				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})

	t.Run("異常系: 走査の失敗は502", func(t *testing.T) {
		mock := &mockScanUsecase{
			ScanFunc: func(_ context.Context, _ []byte) (*entity.ScanReport, error) {
				return nil, errors.New("vision API request failed")
			},
		}
		h := handler.NewScanHandler(mock)

		rec := performScan(h, scanRequest(t, []byte("fake-image")))

		require.Equal(t, http.StatusBadGateway, rec.Code)
		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ブランド走査に失敗しました", resp.Error)
	})
}
