package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"cardlens/internal/feature/identification/domain/entity"
)

// referenceExtensions は参照画像として扱う拡張子です（大文字小文字は区別しません）。
var referenceExtensions = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}}

// ReferenceFile は参照ディレクトリ内の画像ファイル1つを表します。
type ReferenceFile struct {
	ID      string
	Path    string
	Size    int64
	ModTime time.Time
}

// ReferenceSource は参照画像ファイルから記述子を得る機能を抽象化します。
// キャッシュ層はこのインターフェースをデコレートします。
type ReferenceSource interface {
	Descriptors(ctx context.Context, file ReferenceFile, maxFeatures int) ([]entity.Descriptor, error)
}

// ExtractingSource はファイルを読み込んでDescriptorExtractorに渡すReferenceSourceです。
type ExtractingSource struct {
	Extractor DescriptorExtractor
}

var _ ReferenceSource = ExtractingSource{}

// Descriptors はファイルを読み込み、記述子を抽出します。
func (s ExtractingSource) Descriptors(ctx context.Context, file ReferenceFile, maxFeatures int) ([]entity.Descriptor, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	return s.Extractor.Extract(ctx, data, maxFeatures)
}

// CorpusBuilder は参照ディレクトリからコーパスを構築します。
type CorpusBuilder struct {
	source      ReferenceSource
	maxFeatures int
	workers     int
}

// NewCorpusBuilder はCorpusBuilderの新しいインスタンスを生成します。
func NewCorpusBuilder(source ReferenceSource, cfg MatcherConfig) *CorpusBuilder {
	cfg = cfg.normalized()
	return &CorpusBuilder{source: source, maxFeatures: cfg.MaxFeatures, workers: cfg.Workers}
}

// ListReferenceFiles はdir直下の参照画像をファイル名の辞書順で列挙します。
// ディレクトリが存在しない場合は空のスライスを返します。
func ListReferenceFiles(dir string) ([]ReferenceFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reference directory %s: %w", dir, err)
	}

	// os.ReadDir はファイル名順にソート済み
	files := make([]ReferenceFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if _, ok := referenceExtensions[strings.ToLower(ext)]; !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			slog.Warn("skipping reference image", "dir", dir, "file", e.Name(), "error", err)
			continue
		}
		files = append(files, ReferenceFile{
			ID:      strings.TrimSuffix(e.Name(), ext),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// Build はdirの参照画像から新しいコーパスを構築します。
// 読み込めない画像や特徴点が抽出できない画像はスキップされ、構築全体は失敗しません。
func (b *CorpusBuilder) Build(ctx context.Context, dir string) (*entity.Corpus, error) {
	files, err := ListReferenceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		slog.Warn("reference directory is empty or missing", "dir", dir)
		return entity.NewCorpus(nil), nil
	}

	refs := make([]entity.Reference, len(files))
	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, f := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			ds, err := b.source.Descriptors(ctx, f, b.maxFeatures)
			if err != nil {
				slog.Warn("skipping unreadable reference image", "file", f.Path, "error", err)
				return nil
			}
			if len(ds) == 0 {
				slog.Warn("skipping reference image without descriptors", "file", f.Path)
				return nil
			}
			refs[i] = entity.Reference{ID: f.ID, Descriptors: ds}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := refs[:0]
	for _, r := range refs {
		if len(r.Descriptors) > 0 {
			kept = append(kept, r)
		}
	}
	return entity.NewCorpus(kept), nil
}

// CorpusStore は現在のコーパスのスナップショットを保持します。
// 読み取り側は常に構築済みのスナップショットを参照し、Refreshはアトミックに差し替えます。
type CorpusStore struct {
	builder  *CorpusBuilder
	dir      string
	snapshot atomic.Pointer[entity.Corpus]
	group    singleflight.Group
	observer SnapshotObserver
}

// SnapshotObserver はRefreshの結果通知を受け取ります。
type SnapshotObserver interface {
	SetSnapshotSize(snapshot string, n int)
	IncRefreshError(snapshot string)
}

var _ CorpusProvider = (*CorpusStore)(nil)

// NewCorpusStore はCorpusStoreの新しいインスタンスを生成します。
func NewCorpusStore(builder *CorpusBuilder, dir string) *CorpusStore {
	return &CorpusStore{builder: builder, dir: dir}
}

// WithObserver はRefreshの結果を通知する先を設定します。利用開始前に呼び出してください。
func (s *CorpusStore) WithObserver(o SnapshotObserver) *CorpusStore {
	s.observer = o
	return s
}

// Current は現在のスナップショットを返します。未構築の場合はここで構築します。
func (s *CorpusStore) Current(ctx context.Context) (*entity.Corpus, error) {
	if c := s.snapshot.Load(); c != nil {
		return c, nil
	}
	return s.Refresh(ctx)
}

// Refresh は参照ディレクトリからコーパスを再構築して差し替えます。
// 同時に呼ばれた場合、構築は1回だけ行われます。構築は呼び出し元のキャンセルから切り離して実行するため、
// 1つの呼び出し元がキャンセルされても他の呼び出し元は結果を受け取れます。
// キャンセルされた呼び出し元は待機をやめてctx.Err()を返します。
func (s *CorpusStore) Refresh(ctx context.Context) (*entity.Corpus, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		c, err := s.builder.Build(context.WithoutCancel(ctx), s.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to build corpus: %w", err)
		}
		s.snapshot.Store(c)
		slog.Info("reference corpus refreshed", "dir", s.dir, "references", c.Len())
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if s.observer != nil {
				s.observer.IncRefreshError("corpus")
			}
			return nil, res.Err
		}
		c := res.Val.(*entity.Corpus)
		if s.observer != nil {
			s.observer.SetSnapshotSize("corpus", c.Len())
		}
		return c, nil
	}
}
