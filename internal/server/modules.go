package server

import (
	"github.com/palaver-chat/palaver/internal/module"
	"github.com/palaver-chat/palaver/internal/modules/profile"
	"github.com/palaver-chat/palaver/internal/modules/roster"
)

// appModules builds the application's module list. Order matters: the
// profile module registers the panel store other modules may look up.
func appModules(s *Server) []module.Module {
	return []module.Module{
		profile.New(profile.ModuleDeps{
			Users:          s.userStore,
			Files:          s.fileStore,
			Storage:        s.files,
			Sessions:       s.sessions,
			Realtime:       s.manager,
			Publisher:      s.publisher,
			APIBaseURL:     s.Cfg.GetAPIBaseURL(),
			MaxUploadBytes: s.Cfg.GetMaxUploadBytes(),
		}),
		roster.New(roster.Dependencies{
			Users:       s.userStore,
			Subscriber:  s.bridge,
			Broadcaster: s.manager,
		}),
	}
}
