// Package pptx はOffice Open XML形式のスライドデッキを解析するアダプタを提供します。
// デッキはZIPアーカイブなので、archive/zipで展開しencoding/xmlで各パートを読みます。
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"slidegen_backend/internal/feature/deck/domain/entity"
	"slidegen_backend/internal/feature/deck/usecase"
)

// xmlPresentation はppt/presentation.xmlのうち抽出に必要な部分です。
// スライドの表示順はsldIdLstの並び順で決まります。
type xmlPresentation struct {
	SldIDLst struct {
		IDs []struct {
			// r:id属性。素のid属性と区別するため名前空間付きで束縛する
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldId"`
	} `xml:"sldIdLst"`
	SldSz *struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

// xmlRelationships は.relsファイルの関連定義一覧です。
type xmlRelationships struct {
	Rels []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// xmlSlidePart はスライド本体(p:sld)と発表者ノート(p:notes)が共有する構造です。
// spTree直下のp:spだけを対象にし、グループ図形の中までは辿りません。
type xmlSlidePart struct {
	CSld struct {
		SpTree struct {
			Shapes []xmlShape `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type xmlShape struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	SpPr struct {
		Xfrm *struct {
			Off *struct {
				X int64 `xml:"x,attr"`
				Y int64 `xml:"y,attr"`
			} `xml:"off"`
			Ext *struct {
				CX int64 `xml:"cx,attr"`
				CY int64 `xml:"cy,attr"`
			} `xml:"ext"`
		} `xml:"xfrm"`
	} `xml:"spPr"`
	TxBody *struct {
		Paragraphs []xmlParagraph `xml:"p"`
	} `xml:"txBody"`
}

// text は図形内の段落テキストを改行区切りで連結して返します。
// テキスト枠を持たない図形は空文字になります。
func (s *xmlShape) text() string {
	if s.TxBody == nil {
		return ""
	}
	parts := make([]string, len(s.TxBody.Paragraphs))
	for i, p := range s.TxBody.Paragraphs {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// xmlParagraph は段落(a:p)内のラン・フィールド・改行を文書順に連結したテキストです。
type xmlParagraph struct {
	Text string
}

// UnmarshalXML はa:rとa:fldのテキストを出現順に拾い、a:brを改行として扱います。
// 構造体タグだけでは要素種別をまたいだ出現順が保てないため、手でトークンを読みます。
func (p *xmlParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r", "fld":
				var run struct {
					T string `xml:"t"`
				}
				if err := d.DecodeElement(&run, &t); err != nil {
					return err
				}
				b.WriteString(run.T)
			case "br":
				b.WriteString("\n")
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				p.Text = b.String()
				return nil
			}
		}
	}
}

// Parser はデッキファイルからスライドのテキスト構造を取り出します。
type Parser struct{}

// インターフェースの実装を型レベルで保証します。
var _ usecase.DeckParser = (*Parser)(nil)

// NewParser はParserの新しいインスタンスを生成します。
func NewParser() *Parser {
	return &Parser{}
}

// Parse はデッキのバイト列を解析し、表示順のスライド抽出結果を返します。
func (p *Parser) Parse(data []byte) (*entity.Deck, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidDeck, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	presData, err := readZipFile(files, "ppt/presentation.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidDeck, err)
	}
	var pres xmlPresentation
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return nil, fmt.Errorf("%w: presentation.xml: %v", usecase.ErrInvalidDeck, err)
	}

	rels, err := readRels(files, "ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidDeck, err)
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, rel := range rels.Rels {
		targets[rel.ID] = rel.Target
	}

	deck := &entity.Deck{SlideCount: len(pres.SldIDLst.IDs)}
	if pres.SldSz != nil {
		deck.SlideWidth, deck.SlideHeight = pres.SldSz.CX, pres.SldSz.CY
	}

	for i, id := range pres.SldIDLst.IDs {
		target, ok := targets[id.RID]
		if !ok {
			return nil, fmt.Errorf("%w: slide relationship %q not found", usecase.ErrInvalidDeck, id.RID)
		}
		slidePath := path.Clean(path.Join("ppt", target))
		slide, err := parseSlide(files, slidePath, i+1)
		if err != nil {
			return nil, err
		}
		deck.Slides = append(deck.Slides, *slide)
	}
	return deck, nil
}

// parseSlide はスライド1枚を解析し、テキストブロック・図形座標・ノートを抽出します。
func parseSlide(files map[string]*zip.File, slidePath string, page int) (*entity.Slide, error) {
	data, err := readZipFile(files, slidePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidDeck, err)
	}
	var sld xmlSlidePart
	if err := xml.Unmarshal(data, &sld); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", usecase.ErrInvalidDeck, slidePath, err)
	}

	slide := &entity.Slide{Page: page}
	for _, sp := range sld.CSld.SpTree.Shapes {
		text := strings.TrimSpace(sp.text())
		if text == "" {
			continue
		}
		// テキスト内の改行は半角スペースに潰して1行に正規化する
		normalized := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
		slide.TextBlocks = append(slide.TextBlocks, normalized)

		shape := entity.TextShape{Text: normalized}
		if x := sp.SpPr.Xfrm; x != nil {
			if x.Off != nil {
				shape.Left, shape.Top = x.Off.X, x.Off.Y
			}
			if x.Ext != nil {
				shape.Width, shape.Height = x.Ext.CX, x.Ext.CY
			}
		}
		slide.TextShapes = append(slide.TextShapes, shape)
	}

	slide.Notes = readSlideNotes(files, slidePath)
	return slide, nil
}

// readSlideNotes はスライドに紐づく発表者ノートを行単位で返します。
// ノートの欠落や解析失敗は抽出全体を止めるほどではないので、空として扱います。
func readSlideNotes(files map[string]*zip.File, slidePath string) []string {
	relsPath := path.Join(path.Dir(slidePath), "_rels", path.Base(slidePath)+".rels")
	rels, err := readRels(files, relsPath)
	if err != nil {
		// 関連定義のないスライドはノートを持たない
		return nil
	}

	var target string
	for _, rel := range rels.Rels {
		if strings.HasSuffix(rel.Type, "/notesSlide") {
			target = rel.Target
			break
		}
	}
	if target == "" {
		return nil
	}

	notesPath := path.Clean(path.Join(path.Dir(slidePath), target))
	data, err := readZipFile(files, notesPath)
	if err != nil {
		slog.Warn("発表者ノートの読み込みに失敗しました", "path", notesPath, "error", err)
		return nil
	}
	var notes xmlSlidePart
	if err := xml.Unmarshal(data, &notes); err != nil {
		slog.Warn("発表者ノートの解析に失敗しました", "path", notesPath, "error", err)
		return nil
	}

	// ノート本文はbodyプレースホルダだけが持つ。ページ番号等の図形は含めない
	for _, sp := range notes.CSld.SpTree.Shapes {
		ph := sp.NvSpPr.NvPr.Ph
		if ph == nil || ph.Type != "body" {
			continue
		}
		return splitNotes(sp.text())
	}
	return nil
}

// splitNotes はノート本文を行ごとに分割し、前後空白を除いた空でない行を返します。
func splitNotes(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// readRels は.relsファイルを読み、関連定義の一覧を返します。
func readRels(files map[string]*zip.File, name string) (*xmlRelationships, error) {
	data, err := readZipFile(files, name)
	if err != nil {
		return nil, err
	}
	var rels xmlRelationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return &rels, nil
}

// readZipFile はアーカイブ内のエントリを名前で読み出します。
func readZipFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%s not found in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.Warn("zipエントリのクローズに失敗しました", "name", name, "error", err)
		}
	}()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
