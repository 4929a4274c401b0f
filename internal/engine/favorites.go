// internal/engine/favorites.go
package engine

import (
	"sort"

	"macro-log/internal/favorites"
	"macro-log/internal/models"
)

// AddFavorite snapshots a committed log as a favorite.
func (s *Store) AddFavorite(logID string) (models.Favorite, error) {
	var out models.Favorite
	err := s.update(true, func() error {
		l, ok := s.logs[logID]
		if !ok {
			return models.ErrLogNotFound
		}
		out = favorites.ToFavorite(l, s.newID(), s.now())
		s.favorites[out.ID] = out
		return nil
	})
	return out, err
}

func (s *Store) RemoveFavorite(id string) error {
	return s.update(true, func() error {
		if _, ok := s.favorites[id]; !ok {
			return models.ErrFavoriteNotFound
		}
		delete(s.favorites, id)
		return nil
	})
}

// Favorites lists favorites, newest first.
func (s *Store) Favorites() []models.Favorite {
	s.mu.Lock()
	out := make([]models.Favorite, 0, len(s.favorites))
	for _, f := range s.favorites {
		out = append(out, f)
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// LogFavorite creates a new log on date from a favorite.
func (s *Store) LogFavorite(favID, date string) (models.FoodLog, error) {
	if err := validDate(date); err != nil {
		return models.FoodLog{}, err
	}
	var out models.FoodLog
	err := s.update(true, func() error {
		fav, ok := s.favorites[favID]
		if !ok {
			return models.ErrFavoriteNotFound
		}
		l := favorites.FromFavorite(fav, s.newID(), date, s.now())
		s.logs[l.ID] = &l
		out = l.Clone()
		return nil
	})
	return out, err
}
