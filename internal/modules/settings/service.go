package settings

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// Store is the persistence needed by Service.
type Store interface {
	Get(key string) (*string, error)
	Set(key string, value string, description *string) error
	GetAll() (map[string]string, error)
}

// Service validates setting updates and hides secrets on read.
type Service struct {
	repo Store
	log  zerolog.Logger
}

// NewService creates a new settings service
func NewService(repo Store, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "settings").Logger(),
	}
}

// GetAll lists known and stored settings, sorted by key. Secret values are masked.
func (s *Service) GetAll() ([]Setting, error) {
	stored, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]Setting, 0, len(keys))
	for _, k := range keys {
		def := definitions[k]
		value := stored[k]
		if def.secret && value != "" {
			value = maskedValue
		}
		result = append(result, Setting{
			Key:         k,
			Value:       value,
			Description: def.description,
			Secret:      def.secret,
		})
	}
	return result, nil
}

// Set validates and stores value for key.
func (s *Service) Set(key string, value interface{}) error {
	def, ok := definitions[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}

	str, err := normalize(key, def, value)
	if err != nil {
		return err
	}

	desc := def.description
	if err := s.repo.Set(key, str, &desc); err != nil {
		return err
	}

	s.log.Info().Str("key", key).Bool("secret", def.secret).Msg("Setting changed")
	return nil
}

func normalize(key string, def definition, value interface{}) (string, error) {
	switch def.kind {
	case kindFloat, kindInt:
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return "", fmt.Errorf("setting %s must be numeric", key)
			}
			f = parsed
		default:
			return "", fmt.Errorf("setting %s must be numeric", key)
		}
		if f < def.min || f > def.max {
			return "", fmt.Errorf("setting %s must be between %g and %g", key, def.min, def.max)
		}
		if def.kind == kindInt {
			if f != float64(int64(f)) {
				return "", fmt.Errorf("setting %s must be an integer", key)
			}
			return strconv.FormatInt(int64(f), 10), nil
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	default:
		v, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("setting %s must be a string", key)
		}
		if len(def.options) > 0 && !slices.Contains(def.options, v) {
			return "", fmt.Errorf("setting %s must be one of %v", key, def.options)
		}
		return v, nil
	}
}
