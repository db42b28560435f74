package tenantRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"frontdesk/database"
	"frontdesk/models"
	"frontdesk/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrTenantNotFound is returned for missing tenants and, identically, for
// tenants marked inactive.
var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepository resolves tenant configuration by identifier. Pure read.
type TenantRepository interface {
	GetByID(ctx context.Context, tenantID string) (*models.Tenant, error)
}

const (
	tenantCachePrefix = "tenant:cfg:"
	tenantCacheTTL    = 5 * time.Minute
)

type mongoTenantRepo struct {
	coll  *mongo.Collection
	cache *redis.Client
}

// NewMongoTenantRepo returns a TenantRepository backed by MongoDB with a
// short-TTL Redis read-through cache. Tenants are immutable during a single
// conversation, so a slightly stale read is acceptable.
func NewMongoTenantRepo(cache *redis.Client) TenantRepository {
	repo := &mongoTenantRepo{
		coll:  database.Collection("tenants"),
		cache: cache,
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("tenant index creation failed", zap.Error(err))
	}
	return repo
}

func (r *mongoTenantRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create tenant indexes: %w", err)
	}
	return nil
}

// GetByID resolves an active tenant. Inactive tenants are indistinguishable
// from missing ones to callers.
func (r *mongoTenantRepo) GetByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, tenantCachePrefix+tenantID).Result(); err == nil {
			var tenant models.Tenant
			if err := json.Unmarshal([]byte(cached), &tenant); err == nil {
				if !tenant.Active {
					return nil, ErrTenantNotFound
				}
				return &tenant, nil
			}
		}
	}

	var tenant models.Tenant
	err := r.coll.FindOne(ctx, bson.M{"id": tenantID}).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to fetch tenant %s: %w", tenantID, err)
	}

	if r.cache != nil {
		if data, err := json.Marshal(tenant); err == nil {
			r.cache.Set(ctx, tenantCachePrefix+tenantID, data, tenantCacheTTL)
		}
	}

	if !tenant.Active {
		return nil, ErrTenantNotFound
	}
	return &tenant, nil
}
