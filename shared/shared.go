package shared

import (
	"context"
	"fmt"
	"lodge/shared/cache"
	"lodge/shared/constant"
	"lodge/shared/dto"
	"lodge/shared/timezone"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the non-zero db-tagged fields of a struct into an update map
// and stamps the modification time.
func TransformFields(data any) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now().UTC()

	return updatedFields
}

func FilterByID(id any, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins the prefix and parts into a single redis key.
func BuildCacheKey(prefix string, parts ...any) string {
	segments := []string{prefix}
	for _, part := range parts {
		segments = append(segments, fmt.Sprint(part))
	}

	return strings.Join(segments, cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a listing key from the pagination params and the
// active filters. Filters are sorted by name so equivalent requests share a key.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filters map[string]string) string {
	parts := []any{
		"list",
		fmt.Sprintf("page=%d", params.Page),
		fmt.Sprintf("limit=%d", params.Limit),
		fmt.Sprintf("sort_by=%s", params.SortBy),
		fmt.Sprintf("sort_dir=%s", params.SortDir),
	}

	names := make([]string, 0, len(filters))
	for name, value := range filters {
		if value == "" {
			continue
		}

		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, filters[name]))
	}

	return BuildCacheKey(prefix, parts...)
}

// InvalidateCaches drops every key under prefix. Failures are logged, never returned,
// since a stale cache entry expires on its own.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	pattern := prefix + cacheKeySeparator + "*"

	if err := redisCache.Clear(ctx, pattern); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("failed to invalidate caches")
	}
}
