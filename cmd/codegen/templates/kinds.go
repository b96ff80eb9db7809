package templates

// ExitKind is one row of the exit kind table. Order is the wire order of
// exitkind.Kind, so append only.
type ExitKind struct {
	Name      string
	Doc       string
	Countable bool
}

// ExitKinds feeds exitkinds.qtpl. Hole and bounds exits are not countable:
// the baseline tier counts them before the optimizing tier ever sees them.
var ExitKinds = []ExitKind{
	{"Unset", "marks a profile slot that has not recorded an exit.", false},
	{"BadType", "means a type prediction was wrong.", true},
	{"BadFunction", "means a call saw a different callee than speculated.", true},
	{"BadExecutable", "means a call saw a different executable than speculated.", true},
	{"BadCache", "means an inline cache was wrong.", true},
	{"BadCacheWatchpoint", "means a structure check guarded by a watchpoint failed.", true},
	{"BadWeakConstantCache", "means a weakly held constant cache was wrong.", true},
	{"BadIndexingType", "means an indexing type was wrong.", true},
	{"ArgumentsEscaped", "means arguments escaped where they were assumed not to.", true},
	{"NotStringObject", "means a value was assumed to be a string object.", true},
	{"Overflow", "means integer arithmetic overflowed.", true},
	{"NegativeZero", "means arithmetic produced negative zero.", true},
	{"Int52Overflow", "means arithmetic overflowed the 52-bit integer range.", true},
	{"StoreToHole", "means a store hit a hole in an array.", false},
	{"LoadFromHole", "means a load hit a hole in an array.", false},
	{"OutOfBounds", "means an array access was out of bounds.", false},
	{"InadequateCoverage", "means execution reached code without profiling coverage.", true},
	{"Uncountable", "means an exit for none of the above reasons that should not be counted.", false},
	{"UncountableInvalidation", "means the code was invalidated and the reason was already counted when that happened.", false},
	{"WatchdogTimerFired", "means the watchdog timer needed servicing.", true},
	{"DebuggerEvent", "means the debugger needed servicing.", true},
}
