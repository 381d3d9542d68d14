package redis

import (
	"context"
	"reflect"

	"github.com/redis/go-redis/v9"
)

// nextScore draws the next member-list score of a room. It runs outside the member transaction,
// so a failed transaction only leaves a gap in the sequence.
func (r repo) nextScore(ctx context.Context, seqKey string) (float64, error) {
	seq, err := r.rc.Incr(ctx, seqKey).Result()
	if err != nil {
		return 0, err
	}

	return float64(seq), nil
}

func (r repo) hSetStruct(ctx context.Context, c redis.Cmdable, key string, value interface{}) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	fields := make(map[string]interface{})
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag := t.Field(i).Tag.Get("redis")
		if tag == "" {
			tag = t.Field(i).Name
		}

		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			fields[tag] = field.Elem().Interface()
		} else {
			fields[tag] = field.Interface()
		}
	}

	c.HSet(ctx, key, fields)
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
