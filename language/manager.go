package language

// ParseManager parses one directive of the manager language.
//
// Directives:
//
//	DELEGATE file "name" PROMPT="..." [, folder "other" PROMPT="..."]...
//	CREATE file|folder "path"
//	DELETE file|folder "path"
//	READ file|folder "path"
//	SPAWN tester PROMPT="..." [, tester PROMPT="..."]...
//	RUN "command"
//	UPDATE_README CONTENT="..."
//	WAIT
//	FINISH PROMPT="..."
func ParseManager(chunk string) (Directive, error) {
	toks, lerr := lex(chunk)
	if lerr != nil {
		return nil, lerr
	}
	p := &parser{toks: toks}

	kw, perr := p.keyword()
	if perr != nil {
		return nil, perr
	}

	var d Directive
	switch kw {
	case "DELEGATE":
		d, perr = parseDelegate(p)
	case "CREATE":
		var ref TargetRef
		ref, perr = p.expectTargetRef("CREATE")
		d = Create{Target: ref}
	case "DELETE":
		var ref TargetRef
		ref, perr = p.expectTargetRef("DELETE")
		d = Delete{Target: ref}
	case "READ":
		var ref TargetRef
		ref, perr = p.expectTargetRef("READ")
		d = ReadTarget{Target: ref}
	case "SPAWN":
		d, perr = parseSpawn(p)
	case "RUN":
		var cmd string
		cmd, perr = p.expectString("command")
		d = Run{Command: cmd}
	case "UPDATE_README":
		var content string
		content, perr = p.expectField("CONTENT")
		d = UpdateReadme{Content: content}
	case "WAIT":
		d = Wait{}
	case "FINISH":
		var prompt string
		prompt, perr = p.expectField("PROMPT")
		d = Finish{Prompt: prompt}
	default:
		return nil, parseErrorf("Unknown directive: %s", kw)
	}

	if perr != nil {
		return nil, perr
	}
	if perr = p.finish(kw); perr != nil {
		return nil, perr
	}
	return d, nil
}

func parseDelegate(p *parser) (Directive, *ParseError) {
	var items []DelegateItem
	for {
		ref, err := p.expectTargetRef("DELEGATE")
		if err != nil {
			return nil, err
		}
		prompt, err := p.expectField("PROMPT")
		if err != nil {
			return nil, err
		}
		items = append(items, DelegateItem{Target: ref, Prompt: prompt})
		if !p.expectComma() {
			break
		}
	}
	return Delegate{Items: items}, nil
}

func parseSpawn(p *parser) (Directive, *ParseError) {
	var items []SpawnItem
	for {
		t, ok := p.next()
		if !ok || (t.kind != tokIdent && t.kind != tokString) {
			return nil, &ParseError{Msg: "SPAWN requires an ephemeral agent type"}
		}
		prompt, err := p.expectField("PROMPT")
		if err != nil {
			return nil, err
		}
		items = append(items, SpawnItem{EphemeralType: t.text, Prompt: prompt})
		if !p.expectComma() {
			break
		}
	}
	return Spawn{Items: items}, nil
}
