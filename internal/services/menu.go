package services

import (
	"backoffice-console/internal/authz"
	"backoffice-console/internal/registry"

	"go.uber.org/zap"
)

// VisibleItems - чистый фильтр дерева меню по правам актора. Пункт остаётся, если его
// требование пусто или пересекается с правами; дети фильтруются так же. Группа, у которой
// не осталось видимых детей, сохраняется: её видимость определяет только её требование.
// Меню - удобство интерфейса, доступ к экрану проверяется отдельно.
func VisibleItems(actor *authz.Actor, tree []registry.MenuItem) []registry.MenuItem {
	out := make([]registry.MenuItem, 0, len(tree))
	for _, item := range tree {
		if len(item.RequiredPermission) > 0 && !authz.HasAny(actor, item.RequiredPermission) {
			continue
		}
		visible := item
		visible.RequiredPermission = append([]string(nil), item.RequiredPermission...)
		if item.Children != nil {
			visible.Children = VisibleItems(actor, item.Children)
		}
		out = append(out, visible)
	}
	return out
}

type MenuServiceInterface interface {
	Menu(actor *authz.Actor) []registry.MenuItem
}

type MenuService struct {
	tree   []registry.MenuItem
	logger *zap.Logger
}

func NewMenuService(tree []registry.MenuItem, logger *zap.Logger) MenuServiceInterface {
	return &MenuService{tree: tree, logger: logger.Named("menu_service")}
}

// Menu считается заново на каждый вызов из текущего снимка актора.
func (s *MenuService) Menu(actor *authz.Actor) []registry.MenuItem {
	items := VisibleItems(actor, s.tree)
	s.logger.Debug("Меню построено", zap.String("userID", actor.UserID()), zap.Int("top_level", len(items)))
	return items
}
