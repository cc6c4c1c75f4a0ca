package idempotency

import "github.com/redis/go-redis/v9"

// KEYS[1] = record key
// ARGV[1] = base64 fingerprint
// ARGV[2] = pending ttl seconds
var createOrValidateScript = redis.NewScript(`
local k    = KEYS[1]
local hash = ARGV[1]
local pttl = tonumber(ARGV[2])

if redis.call('EXISTS', k) == 0 then
  redis.call('HSET', k, 'hash', hash, 'status', 'PENDING', 'ts', tostring(redis.call('TIME')[1]))
  redis.call('EXPIRE', k, pttl)
  return 'CREATED'
end

if redis.call('HGET', k, 'hash') ~= hash then
  return 'HASH_MISMATCH'
end

if redis.call('HGET', k, 'status') == 'DONE' then
  return 'DONE'
end
return 'PENDING'
`)

// KEYS[1] = record key
// ARGV[1] = base64 fingerprint
// ARGV[2] = payload bytes
// ARGV[3] = done ttl seconds
var completeSuccessScript = redis.NewScript(`
local k    = KEYS[1]
local hash = ARGV[1]

if redis.call('EXISTS', k) == 0 then
  return 'MISSING'
end

if redis.call('HGET', k, 'hash') ~= hash then
  return 'HASH_MISMATCH'
end

if redis.call('HGET', k, 'status') == 'DONE' then
  return 'DONE'
end

redis.call('HSET', k, 'payload', ARGV[2], 'status', 'DONE')
redis.call('EXPIRE', k, tonumber(ARGV[3]))
return 'OK'
`)

// KEYS[1] = record key
var cleanOnFailureScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('DEL', KEYS[1])
end
return 'OK'
`)
