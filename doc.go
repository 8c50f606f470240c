// Package interpose runs method calls made on proxy objects through ordered
// interceptor chains and dispatches them to the concrete method that must
// finally run.
//
// A proxy is a hand-written or generated struct that holds a *Proxy and
// forwards each of its methods to Call. Delegating proxies forward to a
// separate target; overriding proxies embed a base type and dispatch to the
// base's own implementation. Concrete methods are resolved once per
// (declared method, concrete type) pair and cached by the Engine.
//
//	engine, _ := interpose.NewEngine()
//	p, _ := engine.NewDelegating(self, target, []interpose.Interceptor{logging})
//	sum, err := interpose.Call1[int](ctx, p, addMethod, 2, 3)
package interpose
