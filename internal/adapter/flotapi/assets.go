package flotapi

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/adapter/cache"
	"github.com/seu-repo/fleetops/internal/domain"
)

// AssetCatalog resolves vehicle assets through a process-lifetime cache,
// fetching misses in one alias-batched request per call. Keys are
// composite (companyID, assetID): asset ids are not unique across
// tenants.
type AssetCatalog struct {
	client *Client
	cache  *cache.Lookup[*domain.Asset]
	log    *zap.Logger
}

// NewAssetCatalog creates an asset catalog on top of client.
func NewAssetCatalog(client *Client, log *zap.Logger) *AssetCatalog {
	return &AssetCatalog{
		client: client,
		cache:  cache.NewLookup[*domain.Asset]("assets", log),
		log:    log,
	}
}

// ResolveAssets returns the assets for assetIDs within companyID.
// Unknown ids resolve to a nil entry, never to an error.
func (a *AssetCatalog) ResolveAssets(ctx context.Context, companyID string, assetIDs []string) (map[string]*domain.Asset, error) {
	if len(assetIDs) == 0 {
		return map[string]*domain.Asset{}, nil
	}

	keys := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		keys = append(keys, domain.AssetKey(companyID, id))
	}

	cached, err := a.cache.GetOrFetchBatch(ctx, keys, func(ctx context.Context, missing []string) (map[string]*domain.Asset, error) {
		ids := make([]string, 0, len(missing))
		for _, key := range missing {
			ids = append(ids, strings.TrimPrefix(key, companyID+"/"))
		}

		raw, err := a.client.ExecuteBatchedByAlias(ctx, ids, func(alias, id string) string {
			return assetSubQuery(alias, companyID, id)
		})
		if err != nil {
			return nil, err
		}

		out := make(map[string]*domain.Asset, len(raw))
		for id, r := range raw {
			var rec assetRecord
			if err := json.Unmarshal(r, &rec); err != nil {
				a.log.Warn("Failed to decode asset record",
					zap.String("company_id", companyID),
					zap.String("asset_id", id),
					zap.Error(err),
				)
				continue
			}
			asset := rec.toDomain()
			out[domain.AssetKey(companyID, id)] = &asset
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	result := make(map[string]*domain.Asset, len(assetIDs))
	for _, id := range assetIDs {
		result[id] = cached[domain.AssetKey(companyID, id)]
	}
	return result, nil
}
