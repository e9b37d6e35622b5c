package config

type WorkerKeyStruct struct {
	PushDispatchQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PushDispatchQueue: "push_dispatch_queue",
}
