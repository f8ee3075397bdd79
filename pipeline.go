package kknd2

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

var mapExtensions = map[string]struct{}{
	".lpm": {},
	".lps": {},
	".map": {},
}

func (k *KKnD2) findMaps(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			// Ignore any file greater than 64 MB
			if info.Size() > 64<<(10*2) {
				return nil
			}

			if _, ok := mapExtensions[filepath.Ext(file)]; !ok {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (k *KKnD2) mapWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			crc, err := crcFile(file)
			if err != nil {
				errc <- err
				return
			}

			if rec, err := k.db.FindByPath(file); err != nil {
				errc <- err
				return
			} else if rec != nil && rec.CRC == crc {
				continue
			}

			m, err := k.LoadMap(file)
			if err != nil {
				// A file that doesn't decode shouldn't kill the whole scan
				k.logger.Printf("Skipping \"%s\": %v\n", file, err)
				continue
			}

			rec := &MapRecord{
				Path:   file,
				CRC:    crc,
				Layers: len(m.Layers),
			}

			if len(m.Layers) > 0 {
				ground := m.Layers[0]
				rec.MapWidth = ground.MapWidth
				rec.MapHeight = ground.MapHeight
				rec.TileWidth = ground.TileWidth
				rec.TileHeight = ground.TileHeight

				if rec.Thumbnail, err = thumbnail(ground); err != nil {
					errc <- err
					return
				}
			}

			if _, err := k.db.Add(rec); err != nil {
				errc <- err
				return
			}

			k.logger.Printf("Indexed \"%s\", %d layers\n", file, rec.Layers)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path looking for level files, decoding each one found and
// recording its geometry and a thumbnail in the map index. Decodes are
// spread over a pool of workers, each reading through its own file handle.
func (k *KKnD2) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := k.findMaps(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < 10; i++ {
		errc, err := k.mapWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
