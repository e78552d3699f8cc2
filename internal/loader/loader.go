// Package loader imports reference data (ingredients and tags) from JSON or
// YAML files. Rows whose unique keys already exist are skipped, so a file can
// be loaded repeatedly.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// DefaultBatchSize is the number of rows sent per INSERT
const DefaultBatchSize = 500

var ErrUnsupportedFormat = errors.New("unsupported file format (want .json, .yaml or .yml)")

// Result counts what an import did
type Result struct {
	Inserted int64
	Skipped  int64
}

// Format picks the decoder from the file extension
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Decode reads a list of T from r
func Decode[T any](r io.Reader, format Format) ([]T, error) {
	var items []T
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&items)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&items)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return items, nil
}

// ReadFile decodes path according to its extension
func ReadFile[T any](path string) ([]T, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := Decode[T](f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Loader writes decoded reference data through gorm
type Loader struct {
	db        *gorm.DB
	batchSize int
}

func New(db *gorm.DB, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{db: db, batchSize: batchSize}
}

// Ingredients validates and inserts ingredients. Entries repeating a name
// already seen in the same input count as skipped.
func (l *Loader) Ingredients(ctx context.Context, items []models.Ingredient) (Result, error) {
	v := &services.ValidationError{}
	seen := make(map[string]bool, len(items))
	rows := make([]models.Ingredient, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		unit := strings.TrimSpace(item.MeasurementUnit)
		if name == "" || unit == "" {
			v.Add(fmt.Sprintf("[%d]", i), "name and measurement_unit are required")
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	if err := v.OrNil(); err != nil {
		return Result{}, err
	}

	inserted, err := l.insert(ctx, &rows, len(rows))
	if err != nil {
		return Result{}, err
	}
	result := Result{Inserted: inserted, Skipped: int64(len(items)) - inserted}
	log.WithFields(logrus.Fields{"inserted": result.Inserted, "skipped": result.Skipped}).Info("Ingredients loaded")
	return result, nil
}

// Tags validates and inserts tags; a tag clashing on name or slug is skipped
func (l *Loader) Tags(ctx context.Context, tags []models.Tag) (Result, error) {
	v := &services.ValidationError{}
	seen := make(map[string]bool, len(tags))
	rows := make([]models.Tag, 0, len(tags))
	for i := range tags {
		tag := tags[i]
		if err := services.ValidateTag(&tag); err != nil {
			v.Add(fmt.Sprintf("[%d]", i), err.Error())
			continue
		}
		if seen[tag.Slug] {
			continue
		}
		seen[tag.Slug] = true
		rows = append(rows, models.Tag{Name: tag.Name, Color: tag.Color, Slug: tag.Slug})
	}
	if err := v.OrNil(); err != nil {
		return Result{}, err
	}

	inserted, err := l.insert(ctx, &rows, len(rows))
	if err != nil {
		return Result{}, err
	}
	result := Result{Inserted: inserted, Skipped: int64(len(tags)) - inserted}
	log.WithFields(logrus.Fields{"inserted": result.Inserted, "skipped": result.Skipped}).Info("Tags loaded")
	return result, nil
}

func (l *Loader) insert(ctx context.Context, rows any, n int) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	tx := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, l.batchSize)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
