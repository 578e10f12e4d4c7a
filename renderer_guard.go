package connectors

import (
	"fmt"
	"reflect"
)

// PresenterTag records which presenter the render module drives. A frame
// can only go to one place.
type PresenterTag struct {
	Name string
}

// ensureSinglePresenter panics when a second, different presenter is
// installed.
func ensureSinglePresenter(app *App, name string) {
	if app == nil {
		panic("ensureSinglePresenter: app is nil")
	}
	t := reflect.TypeOf((*PresenterTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if tag, ok2 := res.(*PresenterTag); ok2 {
			if tag.Name != name {
				app.Logger().Errorf("Multiple presenters installed: %s and %s", tag.Name, name)
				panic(fmt.Sprintf("Multiple presenters installed: %s and %s", tag.Name, name))
			}
			return
		}
		panic("PresenterTag resource present with unexpected type")
	}
	app.addResources(&PresenterTag{Name: name})
}
