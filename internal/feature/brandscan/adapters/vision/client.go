// Package vision はGoogle Cloud Vision APIを使用したブランドロゴ走査クライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"slidegen_backend/internal/feature/brandscan/domain/entity"
	"slidegen_backend/internal/feature/brandscan/usecase"
)

// VisionLogoScanner はGoogle Cloud Vision APIのLOGO_DETECTIONで
// スライド画像内のブランドロゴを検出します。
type VisionLogoScanner struct {
	client *gvision.ImageAnnotatorClient
}

// VisionLogoScannerがLogoScannerを実装していることをコンパイル時に検証します。
var _ usecase.LogoScanner = (*VisionLogoScanner)(nil)

// NewVisionLogoScanner はADCを使用してVisionLogoScannerの新しいインスタンスを生成します。
func NewVisionLogoScanner(ctx context.Context) (*VisionLogoScanner, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionLogoScanner{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionLogoScanner) Close() error {
	return v.client.Close()
}

// ScanLogos は画像バイト列からロゴを検出します。
// 検出結果はVision APIの返却順（信頼度順）のまま返します。
func (v *VisionLogoScanner) ScanLogos(ctx context.Context, imageData []byte) ([]entity.ScannedLogo, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LOGO_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	logos := make([]entity.ScannedLogo, 0, len(resp.Responses[0].LogoAnnotations))
	for _, logo := range resp.Responses[0].LogoAnnotations {
		logos = append(logos, entity.ScannedLogo{
			Name:       logo.Description,
			Confidence: logo.Score,
		})
	}
	return logos, nil
}
