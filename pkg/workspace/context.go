package workspace

import "context"

type contextKey string

const workspaceContextKey contextKey = "workspace"

func NewContext(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, workspaceContextKey, ws)
}

func FromContext(ctx context.Context) (*Workspace, bool) {
	ws, ok := ctx.Value(workspaceContextKey).(*Workspace)
	return ws, ok && ws != nil
}
