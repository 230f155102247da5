package infra_catalog_cache

import (
	"encoding/json"
	"time"

	"github.com/go-redis/redis"
	"github.com/moviematch/core/internal/model"
)

// Genre and collection listings change rarely upstream, so entries
// live for two weeks before a refetch.
const defaultTTL = 14 * 24 * time.Hour

type Driver struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func New(client *redis.Client, key string) *Driver {
	return &Driver{
		client: client,
		key:    key,
		ttl:    defaultTTL,
	}
}

func (d *Driver) Genres() ([]model.Genre, error) {
	var genres []model.Genre
	if ok, err := d.get("genres", &genres); err != nil || !ok {
		return nil, err
	}
	return genres, nil
}

func (d *Driver) SetGenres(genres []model.Genre) error {
	return d.set("genres", genres)
}

func (d *Driver) Collections() ([]model.Collection, error) {
	var collections []model.Collection
	if ok, err := d.get("collections", &collections); err != nil || !ok {
		return nil, err
	}
	return collections, nil
}

func (d *Driver) SetCollections(collections []model.Collection) error {
	return d.set("collections", collections)
}

func (d *Driver) get(key string, dest any) (bool, error) {
	raw, err := d.client.Get(d.getFullKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Driver) set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return d.client.Set(d.getFullKey(key), string(raw), d.ttl).Err()
}

func (d *Driver) getFullKey(key string) string {
	if d.key != "" {
		return d.key + ":" + key
	}
	return key
}
