package session

import "aino/pkg/pipeline"

// flashKey is the session entry holding pending flash messages.
const flashKey = "aino_flash"

// PutFlash queues a one-shot message for the next rendered page. Values are
// strings only; the nested map lives in the session until LoadFlash moves
// it out.
func PutFlash(ctx *pipeline.Context, key, value string) {
	mustDecoded(ctx)
	box, ok := ctx.Session[flashKey].(map[string]interface{})
	if !ok {
		box = map[string]interface{}{}
	}
	box[key] = value
	Put(ctx, flashKey, box)
}

// LoadFlash moves queued flash messages onto the context and deletes them
// from the session, so a reload never redisplays them. Absent messages load
// as an empty map.
func LoadFlash(ctx *pipeline.Context) *pipeline.Context {
	mustDecoded(ctx)
	flash := map[string]string{}
	if box, ok := ctx.Session[flashKey].(map[string]interface{}); ok {
		for k, v := range box {
			if s, ok := v.(string); ok {
				flash[k] = s
			}
		}
		Delete(ctx, flashKey)
	}
	ctx.Flash = flash
	return ctx
}
