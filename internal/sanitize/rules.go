package sanitize

// Rule replaces the first exact occurrence of Pattern with Replacement.
type Rule struct {
	Name        string
	Pattern     string
	Replacement string
	Reason      string
}

// DefaultRules are the patches applied to every generated file.
var DefaultRules = []Rule{
	{
		Name:        "native-function-check",
		Pattern:     `function _isNativeFunction(fn) { return Function.toString.call(fn).indexOf("[native code]") !== -1; }`,
		Replacement: `function _isNativeFunction(fn) { return false; }`,
		// Inspecting Function.prototype.toString output is not reliable
		// across runtimes. Reporting false routes the class helpers to
		// their wrapper fallback.
		Reason: "native function detection via Function.toString is not portable",
	},
	{
		Name:        "reflect-construct",
		Pattern:     `function _construct(Parent, args, Class) { if (_isNativeReflectConstruct()) { _construct = Reflect.construct; } else { _construct = function _construct(Parent, args, Class) { var a = [null]; a.push.apply(a, args); var Constructor = Function.bind.apply(Parent, a); var instance = new Constructor(); if (Class) _setPrototypeOf(instance, Class.prototype); return instance; }; } return _construct.apply(null, arguments); }`,
		Replacement: `function _construct(Parent, args, Class) { _construct = Reflect.construct; return _construct.apply(null, arguments); }`,
		// Every supported runtime ships Reflect.construct, so the polyfill
		// branch is dead code.
		Reason: "Reflect.construct is always available on supported runtimes",
	},
}
