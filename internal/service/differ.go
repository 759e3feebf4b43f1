package service

import "releasewatch/internal/model"

// ReleaseDiffer сравнивает сохраненные и текущие снимки релизов
type ReleaseDiffer struct{}

// NewReleaseDiffer создает новый ReleaseDiffer
func NewReleaseDiffer() *ReleaseDiffer {
	return &ReleaseDiffer{}
}

// Changed сообщает о новом релизе: признак изменения только название, дата не учитывается
func (d *ReleaseDiffer) Changed(previous, current model.ReleaseSnapshot) bool {
	return current.Name != "" && current.Name != previous.Name
}

// Apply сравнивает альбом и сингл независимо и возвращает 0, 1 или 2 изменения
func (d *ReleaseDiffer) Apply(artist model.MonitoredArtist, previous, current model.SnapshotPair) []model.ChangeRecord {
	var changes []model.ChangeRecord

	for _, kind := range model.ReleaseKinds() {
		cur := current.Get(kind)
		if !d.Changed(previous.Get(kind), cur) {
			continue
		}

		if cur.Kind == "" {
			cur.Kind = kind
		}

		changes = append(changes, model.ChangeRecord{
			ArtistID:   artist.ID,
			ArtistName: artist.Name,
			Kind:       kind,
			Snapshot:   cur,
		})
	}

	return changes
}
