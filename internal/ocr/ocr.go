package ocr

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Word is one recognized token with its bounding box and 0-100 confidence.
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Result is the OCR collaborator's output. The pipeline consumes Text;
// Confidence and Words are kept as diagnostic metadata.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words,omitempty"`
}

// Engine runs Tesseract over receipt images after a contrast-enhancing
// preprocessing pass. Defaults to Turkish plus English language data.
type Engine struct {
	languages []string
}

func NewEngine(languages ...string) *Engine {
	if len(languages) == 0 {
		languages = []string{"tur", "eng"}
	}
	return &Engine{languages: languages}
}

// preprocess sharpens the document for recognition: grayscale, contrast,
// sharpen, slight brightness and gamma lift. Receipt thermal prints fade,
// so the contrast boost does most of the work.
func (e *Engine) preprocess(imagePath string) ([]byte, error) {
	src, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	img = imaging.AdjustGamma(img, 1.2)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractText recognizes the text in an image file and reports the mean
// word confidence on a 0-100 scale.
func (e *Engine) ExtractText(imagePath string) (*Result, error) {
	processed, err := e.preprocess(imagePath)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetImageFromBytes(processed); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	result := &Result{Text: text}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Word boxes are diagnostics only; the recognized text stands.
		return result, nil
	}

	var sum float64
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		result.Words = append(result.Words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
		})
		sum += b.Confidence
	}
	if len(result.Words) > 0 {
		result.Confidence = sum / float64(len(result.Words))
	}

	return result, nil
}
