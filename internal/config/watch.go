package config

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with the newly
// loaded Config each time the file is written. It runs until ctx is
// cancelled.
//
// If a reload fails the error is logged and the previous config stays
// active; onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Printf("config watch started path=%s", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so catch Create alongside Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Printf("config reload failed path=%s err=%v", path, err)
				continue
			}

			log.Printf("config reloaded path=%s", path)
			onChange(cfg)

			// An atomic save may have replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config watcher error err=%v", err)
		}
	}
}
