package games

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// lookupName resolves an id against a cached map, falling back to a
// readable placeholder so name resolution can never fail a request.
func lookupName(names map[int64]string, id int64, kind string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("%s %d", kind, id)
}

func (s *Store) loadNames(ctx context.Context, table string) map[int64]string {
	names := make(map[int64]string)
	rows, err := s.DB.QueryContext(ctx, "SELECT id, name FROM "+table)
	if err != nil {
		log.Printf("[games] %s lookup load failed: %v", table, err)
		return names
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			log.Printf("[games] %s lookup scan failed: %v", table, err)
			return names
		}
		names[id] = name
	}
	return names
}

// lookupMaps returns the genre and platform name maps, populating each
// cache on first use. The two loads run concurrently on a cold cache.
func (s *Store) lookupMaps(ctx context.Context) (map[int64]string, map[int64]string) {
	s.mu.Lock()
	genres, platforms := s.genreNames, s.platformNames
	s.mu.Unlock()
	if genres != nil && platforms != nil {
		return genres, platforms
	}

	var wg sync.WaitGroup
	if genres == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			genres = s.loadNames(ctx, "genres")
		}()
	}
	if platforms == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			platforms = s.loadNames(ctx, "platforms")
		}()
	}
	wg.Wait()

	s.mu.Lock()
	s.genreNames, s.platformNames = genres, platforms
	s.mu.Unlock()
	return genres, platforms
}
